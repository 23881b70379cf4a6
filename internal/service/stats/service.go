package stats

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/wordle-stats-bot/internal/domain"
)

const defaultLuckMinAttempts = 5

type Config struct {
	// LuckMinAttempts is the minimum attempt count before a player is ranked
	// by luck, to keep small samples off the board.
	LuckMinAttempts int
}

// Service computes derived statistics over stored results. Every operation
// is a pure read over a snapshot; an empty data set yields typed empty
// results, never an error.
type Service struct {
	repo   Repository
	cfg    Config
	logger *zap.Logger
}

func NewService(repo Repository, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LuckMinAttempts <= 0 {
		cfg.LuckMinAttempts = defaultLuckMinAttempts
	}
	return &Service{repo: repo, cfg: cfg, logger: logger}
}

func (s *Service) snapshot(ctx context.Context) ([]domain.GameResult, error) {
	return s.repo.Query(ctx, Filter{})
}

// Leaderboard returns players ranked by total wins, most first; ties break
// by ascending player name. limit <= 0 returns everyone.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	results, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	wins := make(map[string]int)
	for _, r := range results {
		if r.IsWinner {
			wins[r.PlayerName]++
		}
	}
	entries := make([]LeaderboardEntry, 0, len(wins))
	for player, count := range wins {
		entries = append(entries, LeaderboardEntry{Player: player, Wins: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Wins != entries[j].Wins {
			return entries[i].Wins > entries[j].Wins
		}
		return entries[i].Player < entries[j].Player
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Averages returns mean scores per player, best average first. Failed
// attempts never enter the mean; they are reported as Fails. Players who
// never solved a puzzle sort last with a zero average.
func (s *Service) Averages(ctx context.Context) ([]AverageEntry, error) {
	results, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	type acc struct {
		sum, solved, fails, games int
	}
	byPlayer := make(map[string]*acc)
	for _, r := range results {
		a := byPlayer[r.PlayerName]
		if a == nil {
			a = &acc{}
			byPlayer[r.PlayerName] = a
		}
		a.games++
		if r.Failed() {
			a.fails++
			continue
		}
		a.sum += r.Score
		a.solved++
	}

	entries := make([]AverageEntry, 0, len(byPlayer))
	for player, a := range byPlayer {
		e := AverageEntry{Player: player, Games: a.games, Fails: a.fails}
		if a.solved > 0 {
			e.Average = float64(a.sum) / float64(a.solved)
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		iz, jz := entries[i].Average == 0, entries[j].Average == 0
		if iz != jz {
			return jz
		}
		if entries[i].Average != entries[j].Average {
			return entries[i].Average < entries[j].Average
		}
		return entries[i].Player < entries[j].Player
	})
	return entries, nil
}

// Streaks reports the group streak: runs of consecutive calendar days with
// at least one recorded result. Gaps in puzzle numbers do not matter, gaps
// in days do.
func (s *Service) Streaks(ctx context.Context) (StreakInfo, error) {
	results, err := s.snapshot(ctx)
	if err != nil {
		return StreakInfo{}, err
	}
	days := distinctDays(results)
	if len(days) == 0 {
		return StreakInfo{}, nil
	}

	best, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return StreakInfo{Current: run, Best: best, LastPlayed: days[len(days)-1]}, nil
}

// Luck ranks players by the share of 1/6 and 2/6 finishes among their
// attempts. Players below the configured attempt threshold are skipped.
func (s *Service) Luck(ctx context.Context, limit int) ([]LuckEntry, error) {
	results, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	type acc struct{ lucky, attempts int }
	byPlayer := make(map[string]*acc)
	for _, r := range results {
		a := byPlayer[r.PlayerName]
		if a == nil {
			a = &acc{}
			byPlayer[r.PlayerName] = a
		}
		a.attempts++
		if r.Score == 1 || r.Score == 2 {
			a.lucky++
		}
	}

	var entries []LuckEntry
	for player, a := range byPlayer {
		if a.attempts < s.cfg.LuckMinAttempts {
			continue
		}
		entries = append(entries, LuckEntry{
			Player:   player,
			Lucky:    a.lucky,
			Attempts: a.attempts,
			Rate:     float64(a.lucky) / float64(a.attempts),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Rate != entries[j].Rate {
			return entries[i].Rate > entries[j].Rate
		}
		if entries[i].Lucky != entries[j].Lucky {
			return entries[i].Lucky > entries[j].Lucky
		}
		return entries[i].Player < entries[j].Player
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Participation reports, per player, the fraction of the group's played days
// they have a result for.
func (s *Service) Participation(ctx context.Context) ([]ParticipationEntry, error) {
	results, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	total := len(distinctDays(results))
	if total == 0 {
		return nil, nil
	}

	daysByPlayer := make(map[string]map[time.Time]struct{})
	for _, r := range results {
		days := daysByPlayer[r.PlayerName]
		if days == nil {
			days = make(map[time.Time]struct{})
			daysByPlayer[r.PlayerName] = days
		}
		days[domain.Day(r.Date)] = struct{}{}
	}

	entries := make([]ParticipationEntry, 0, len(daysByPlayer))
	for player, days := range daysByPlayer {
		entries = append(entries, ParticipationEntry{
			Player:     player,
			DaysPlayed: len(days),
			TotalDays:  total,
			Rate:       float64(len(days)) / float64(total),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].DaysPlayed != entries[j].DaysPlayed {
			return entries[i].DaysPlayed > entries[j].DaysPlayed
		}
		return entries[i].Player < entries[j].Player
	})
	return entries, nil
}

// HeadToHead compares two players over the days both have a result for.
// Lower score wins a day; equal scores tie, whether or not a third player
// tied as well. An unknown player simply yields zero overlap.
func (s *Service) HeadToHead(ctx context.Context, playerA, playerB string) (HeadToHead, error) {
	results, err := s.snapshot(ctx)
	if err != nil {
		return HeadToHead{}, err
	}

	scoresA := make(map[time.Time]int)
	scoresB := make(map[time.Time]int)
	for _, r := range results {
		day := domain.Day(r.Date)
		switch r.PlayerName {
		case playerA:
			scoresA[day] = r.Score
		case playerB:
			scoresB[day] = r.Score
		}
	}

	h2h := HeadToHead{PlayerA: playerA, PlayerB: playerB}
	for day, a := range scoresA {
		b, ok := scoresB[day]
		if !ok {
			continue
		}
		h2h.Overlap++
		switch {
		case a < b:
			h2h.WinsA++
		case b < a:
			h2h.WinsB++
		default:
			h2h.Ties++
		}
	}
	return h2h, nil
}

// WeekdayWinners names, for each day of the week with any wins, the player
// who wins it most often. Ties break by ascending player name. Output runs
// Monday through Sunday.
func (s *Service) WeekdayWinners(ctx context.Context) ([]WeekdayWinner, error) {
	results, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	wins := make(map[time.Weekday]map[string]int)
	for _, r := range results {
		if !r.IsWinner {
			continue
		}
		wd := r.Date.Weekday()
		if wins[wd] == nil {
			wins[wd] = make(map[string]int)
		}
		wins[wd][r.PlayerName]++
	}

	var out []WeekdayWinner
	for i := 0; i < 7; i++ {
		wd := time.Weekday((i + 1) % 7) // Monday first
		byPlayer := wins[wd]
		if len(byPlayer) == 0 {
			continue
		}
		top := WeekdayWinner{Weekday: wd}
		for player, count := range byPlayer {
			if count > top.Wins || (count == top.Wins && (top.Player == "" || player < top.Player)) {
				top.Player = player
				top.Wins = count
			}
		}
		out = append(out, top)
	}
	return out, nil
}

// PlayerStats builds the profile block for one player. A player with no
// recorded games returns nil, which callers present as "no data".
func (s *Service) PlayerStats(ctx context.Context, player string) (*PlayerStats, error) {
	results, err := s.repo.Query(ctx, Filter{Player: player})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	ps := &PlayerStats{Player: player, Distribution: make(map[int]int)}
	sum, solved := 0, 0
	for _, r := range results {
		ps.Games++
		ps.Distribution[r.Score]++
		if r.IsWinner {
			ps.Wins++
		}
		if r.Failed() {
			ps.Fails++
			continue
		}
		sum += r.Score
		solved++
		if ps.BestScore == 0 || r.Score < ps.BestScore {
			ps.BestScore = r.Score
		}
	}
	ps.WinRate = float64(ps.Wins) / float64(ps.Games)
	ps.FailRate = float64(ps.Fails) / float64(ps.Games)
	if solved > 0 {
		ps.Average = float64(sum) / float64(solved)
	}
	return ps, nil
}

// History returns the most recent played days, newest first, each day's
// results ordered best score first.
func (s *Service) History(ctx context.Context, days int) ([]DaySummary, error) {
	results, err := s.repo.Query(ctx, Filter{OrderByDate: true})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	byDay := make(map[time.Time][]domain.GameResult)
	for _, r := range results {
		day := domain.Day(r.Date)
		byDay[day] = append(byDay[day], r)
	}
	order := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		order = append(order, day)
	}
	sort.Slice(order, func(i, j int) bool { return order[i].After(order[j]) })
	if days > 0 && len(order) > days {
		order = order[:days]
	}

	out := make([]DaySummary, 0, len(order))
	for _, day := range order {
		dayResults := byDay[day]
		sort.SliceStable(dayResults, func(i, j int) bool {
			if dayResults[i].Score != dayResults[j].Score {
				return dayResults[i].Score < dayResults[j].Score
			}
			return dayResults[i].PlayerName < dayResults[j].PlayerName
		})
		out = append(out, DaySummary{Date: day, Results: dayResults})
	}
	return out, nil
}

// Overview summarizes the whole data set.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	results, err := s.snapshot(ctx)
	if err != nil {
		return Overview{}, err
	}
	if len(results) == 0 {
		return Overview{}, nil
	}

	players := make(map[string]struct{})
	days := distinctDays(results)
	ov := Overview{
		TotalResults: len(results),
		DaysTracked:  len(days),
		FirstDate:    days[0],
		LastDate:     days[len(days)-1],
	}
	for _, r := range results {
		players[r.PlayerName] = struct{}{}
	}
	ov.UniquePlayers = len(players)
	return ov, nil
}

// Players lists everyone in the data set with their game counts, most
// active first.
func (s *Service) Players(ctx context.Context) ([]PlayerCount, error) {
	results, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, r := range results {
		counts[r.PlayerName]++
	}
	out := make([]PlayerCount, 0, len(counts))
	for player, games := range counts {
		out = append(out, PlayerCount{Player: player, Games: games})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Games != out[j].Games {
			return out[i].Games > out[j].Games
		}
		return out[i].Player < out[j].Player
	})
	return out, nil
}

// distinctDays returns the sorted set of calendar days present in results.
func distinctDays(results []domain.GameResult) []time.Time {
	seen := make(map[time.Time]struct{})
	var days []time.Time
	for _, r := range results {
		day := domain.Day(r.Date)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
