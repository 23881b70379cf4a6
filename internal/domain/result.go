package domain

import "time"

// FailScore is the sentinel stored for X/6 attempts (did not solve in six).
const FailScore = 7

// GameResult is one player's outcome for one daily puzzle. Records are
// append-only: inserted once, never mutated, never deleted.
type GameResult struct {
	ID              int64
	PuzzleNumber    int
	PlayerName      string
	Score           int
	IsWinner        bool
	Date            time.Time
	SourceMessageID string
	StreakCount     *int
	CreatedAt       time.Time
}

// Failed reports whether this result is a failed attempt.
func (r GameResult) Failed() bool { return r.Score >= FailScore }

// Day returns the result date truncated to midnight UTC. Streak and
// participation math compare days, not timestamps.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
