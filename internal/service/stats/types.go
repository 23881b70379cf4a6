package stats

import (
	"time"

	"github.com/kapu/wordle-stats-bot/internal/domain"
)

// LeaderboardEntry is one row of the wins leaderboard. Tied daily wins count
// fully for every tied player.
type LeaderboardEntry struct {
	Player string
	Wins   int
}

// AverageEntry reports a player's mean score over solved puzzles. Failed
// attempts are excluded from the mean and surfaced as Fails instead.
type AverageEntry struct {
	Player  string
	Average float64
	Games   int
	Fails   int
}

// StreakInfo describes the group's run of consecutive played days.
type StreakInfo struct {
	Current    int
	Best       int
	LastPlayed time.Time
}

// LuckEntry ranks a player by the share of 1/6 and 2/6 finishes among all
// their attempts.
type LuckEntry struct {
	Player   string
	Lucky    int
	Attempts int
	Rate     float64
}

// ParticipationEntry reports how many of the group's played days a player
// showed up for.
type ParticipationEntry struct {
	Player     string
	DaysPlayed int
	TotalDays  int
	Rate       float64
}

// HeadToHead tallies two players over the days both participated in.
type HeadToHead struct {
	PlayerA string
	PlayerB string
	Overlap int
	WinsA   int
	WinsB   int
	Ties    int
}

// WeekdayWinner names the player with the most wins on one day of the week.
type WeekdayWinner struct {
	Weekday time.Weekday
	Player  string
	Wins    int
}

// PlayerStats is the per-player profile block.
type PlayerStats struct {
	Player       string
	Games        int
	Wins         int
	WinRate      float64
	Average      float64
	BestScore    int // 0 when the player never solved a puzzle
	Fails        int
	FailRate     float64
	Distribution map[int]int // score (1..6, FailScore) -> count
}

// DaySummary groups one day's results, ordered best score first.
type DaySummary struct {
	Date    time.Time
	Results []domain.GameResult
}

// Overview describes the whole data set.
type Overview struct {
	TotalResults  int
	UniquePlayers int
	DaysTracked   int
	FirstDate     time.Time
	LastDate      time.Time
}

// PlayerCount pairs a player with their recorded game count.
type PlayerCount struct {
	Player string
	Games  int
}
