package stats

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/wordle-stats-bot/internal/domain"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func res(msgID, player string, score int, winner bool, date string) domain.GameResult {
	return domain.GameResult{
		SourceMessageID: msgID,
		PlayerName:      player,
		Score:           score,
		IsWinner:        winner,
		Date:            day(date),
	}
}

func newTestService(t *testing.T, seed []domain.GameResult) (*Service, Repository) {
	t.Helper()
	repo := NewMemoryRepository()
	if len(seed) > 0 {
		if _, err := repo.Insert(context.Background(), seed); err != nil {
			t.Fatalf("seed insert: %v", err)
		}
	}
	return NewService(repo, Config{}, zap.NewNop()), repo
}

func TestInsertIdempotent(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	batch := []domain.GameResult{
		res("m1", "alice", 3, true, "2024-01-10"),
		res("m1", "bob", 4, false, "2024-01-10"),
	}

	n, err := repo.Insert(ctx, batch)
	if err != nil || n != 2 {
		t.Fatalf("first insert: n=%d err=%v", n, err)
	}
	n, err = repo.Insert(ctx, batch)
	if err != nil || n != 0 {
		t.Fatalf("re-insert should write nothing: n=%d err=%v", n, err)
	}

	all, err := repo.Query(ctx, Filter{})
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 stored rows, got %d (err=%v)", len(all), err)
	}
}

func TestQueryFilters(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	seed := []domain.GameResult{
		res("m1", "alice", 3, true, "2024-01-08"),
		res("m2", "alice", 4, false, "2024-01-09"),
		res("m2", "bob", 2, true, "2024-01-09"),
		res("m3", "bob", 5, true, "2024-01-12"),
	}
	if _, err := repo.Insert(ctx, seed); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.Query(ctx, Filter{Player: "alice"})
	if err != nil || len(got) != 2 {
		t.Fatalf("player filter: %d rows, err=%v", len(got), err)
	}
	got, err = repo.Query(ctx, Filter{From: day("2024-01-09"), To: day("2024-01-09")})
	if err != nil || len(got) != 2 {
		t.Fatalf("date range filter: %d rows, err=%v", len(got), err)
	}
	players, err := repo.AllPlayers(ctx)
	if err != nil || len(players) != 2 {
		t.Fatalf("AllPlayers: %v err=%v", players, err)
	}
}

func TestLeaderboardTiesCountFully(t *testing.T) {
	svc, _ := newTestService(t, []domain.GameResult{
		res("m1", "alice", 3, true, "2024-01-08"),
		res("m1", "bob", 3, true, "2024-01-08"),
		res("m1", "carol", 5, false, "2024-01-08"),
		res("m2", "bob", 2, true, "2024-01-09"),
	})

	lb, err := svc.Leaderboard(context.Background(), 10)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(lb) != 2 {
		t.Fatalf("expected 2 leaderboard rows, got %v", lb)
	}
	if lb[0].Player != "bob" || lb[0].Wins != 2 {
		t.Fatalf("expected bob on top with 2 wins, got %+v", lb[0])
	}
	if lb[1].Player != "alice" || lb[1].Wins != 1 {
		t.Fatalf("tied win must count fully for alice, got %+v", lb[1])
	}
}

func TestAveragesExcludeFails(t *testing.T) {
	svc, _ := newTestService(t, []domain.GameResult{
		res("m1", "alice", 2, true, "2024-01-08"),
		res("m2", "alice", 4, false, "2024-01-09"),
		res("m3", "alice", domain.FailScore, false, "2024-01-10"),
		res("m3", "bob", domain.FailScore, false, "2024-01-10"),
	})

	avgs, err := svc.Averages(context.Background())
	if err != nil {
		t.Fatalf("Averages: %v", err)
	}
	if avgs[0].Player != "alice" || avgs[0].Average != 3.0 {
		t.Fatalf("fail must not enter the mean: %+v", avgs[0])
	}
	if avgs[0].Fails != 1 || avgs[0].Games != 3 {
		t.Fatalf("fails reported separately: %+v", avgs[0])
	}
	// bob never solved: sorted last, zero average
	if avgs[1].Player != "bob" || avgs[1].Average != 0 {
		t.Fatalf("all-fail player should sort last: %+v", avgs)
	}
}

func TestStreakBreaksOnGap(t *testing.T) {
	// days 1,2,3,5,6 — day 4 missing
	svc, _ := newTestService(t, []domain.GameResult{
		res("m1", "alice", 3, true, "2024-01-01"),
		res("m2", "alice", 3, true, "2024-01-02"),
		res("m3", "bob", 3, true, "2024-01-03"),
		res("m5", "alice", 3, true, "2024-01-05"),
		res("m6", "alice", 3, true, "2024-01-06"),
	})

	info, err := svc.Streaks(context.Background())
	if err != nil {
		t.Fatalf("Streaks: %v", err)
	}
	if info.Current != 2 {
		t.Fatalf("current streak = %d, want 2", info.Current)
	}
	if info.Best != 3 {
		t.Fatalf("best streak = %d, want 3", info.Best)
	}
	if !info.LastPlayed.Equal(day("2024-01-06")) {
		t.Fatalf("last played = %v", info.LastPlayed)
	}
}

func TestStreakIgnoresPuzzleNumberGaps(t *testing.T) {
	a := res("m1", "alice", 3, true, "2024-01-01")
	a.PuzzleNumber = 100
	b := res("m2", "alice", 3, true, "2024-01-02")
	b.PuzzleNumber = 140 // number jumped, days did not
	svc, _ := newTestService(t, []domain.GameResult{a, b})

	info, err := svc.Streaks(context.Background())
	if err != nil || info.Current != 2 || info.Best != 2 {
		t.Fatalf("date gaps matter, puzzle gaps do not: %+v err=%v", info, err)
	}
}

func TestLuckThreshold(t *testing.T) {
	var seed []domain.GameResult
	days := []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"}
	for i, d := range days {
		score := 2
		if i >= 2 {
			score = 5
		}
		seed = append(seed, res("m"+d, "alice", score, false, d))
	}
	// bob has a perfect rate but only one attempt
	seed = append(seed, res("mb", "bob", 1, true, "2024-01-01"))
	svc, _ := newTestService(t, seed)

	entries, err := svc.Luck(context.Background(), 10)
	if err != nil {
		t.Fatalf("Luck: %v", err)
	}
	if len(entries) != 1 || entries[0].Player != "alice" {
		t.Fatalf("below-threshold player must be skipped: %v", entries)
	}
	if entries[0].Lucky != 2 || entries[0].Attempts != 5 {
		t.Fatalf("unexpected luck tally: %+v", entries[0])
	}
}

func TestParticipation(t *testing.T) {
	svc, _ := newTestService(t, []domain.GameResult{
		res("m1", "alice", 3, true, "2024-01-01"),
		res("m2", "alice", 3, true, "2024-01-02"),
		res("m2", "bob", 4, false, "2024-01-02"),
		res("m3", "alice", 3, true, "2024-01-03"),
	})

	entries, err := svc.Participation(context.Background())
	if err != nil {
		t.Fatalf("Participation: %v", err)
	}
	if entries[0].Player != "alice" || entries[0].DaysPlayed != 3 || entries[0].TotalDays != 3 {
		t.Fatalf("unexpected alice participation: %+v", entries[0])
	}
	if entries[1].Player != "bob" || entries[1].DaysPlayed != 1 {
		t.Fatalf("unexpected bob participation: %+v", entries[1])
	}
}

func TestHeadToHeadRestrictedOverlap(t *testing.T) {
	// alice plays days 1,2,3; bob plays days 2,3,4 — only 2,3 count
	svc, _ := newTestService(t, []domain.GameResult{
		res("m1", "alice", 3, true, "2024-01-01"),
		res("m2", "alice", 3, false, "2024-01-02"),
		res("m2", "bob", 2, true, "2024-01-02"),
		res("m3", "alice", 4, false, "2024-01-03"),
		res("m3", "bob", 4, false, "2024-01-03"),
		res("m4", "bob", 5, true, "2024-01-04"),
	})

	h2h, err := svc.HeadToHead(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("HeadToHead: %v", err)
	}
	if h2h.Overlap != 2 {
		t.Fatalf("overlap = %d, want 2", h2h.Overlap)
	}
	if h2h.WinsA != 0 || h2h.WinsB != 1 || h2h.Ties != 1 {
		t.Fatalf("unexpected tally: %+v", h2h)
	}
}

func TestHeadToHeadUnknownPlayer(t *testing.T) {
	svc, _ := newTestService(t, []domain.GameResult{
		res("m1", "alice", 3, true, "2024-01-01"),
	})
	h2h, err := svc.HeadToHead(context.Background(), "alice", "nobody")
	if err != nil {
		t.Fatalf("unknown player must not error: %v", err)
	}
	if h2h.Overlap != 0 {
		t.Fatalf("expected zero overlap, got %+v", h2h)
	}
}

func TestWeekdayWinners(t *testing.T) {
	// 2024-01-01 and 2024-01-08 are Mondays
	svc, _ := newTestService(t, []domain.GameResult{
		res("m1", "alice", 3, true, "2024-01-01"),
		res("m2", "alice", 3, true, "2024-01-08"),
		res("m3", "bob", 3, true, "2024-01-02"),
	})

	winners, err := svc.WeekdayWinners(context.Background())
	if err != nil {
		t.Fatalf("WeekdayWinners: %v", err)
	}
	if len(winners) != 2 {
		t.Fatalf("expected 2 weekday rows, got %v", winners)
	}
	if winners[0].Weekday != time.Monday || winners[0].Player != "alice" || winners[0].Wins != 2 {
		t.Fatalf("unexpected Monday winner: %+v", winners[0])
	}
	if winners[1].Weekday != time.Tuesday || winners[1].Player != "bob" {
		t.Fatalf("unexpected Tuesday winner: %+v", winners[1])
	}
}

func TestPlayerStats(t *testing.T) {
	svc, _ := newTestService(t, []domain.GameResult{
		res("m1", "alice", 2, true, "2024-01-01"),
		res("m2", "alice", 4, false, "2024-01-02"),
		res("m3", "alice", domain.FailScore, false, "2024-01-03"),
	})

	ps, err := svc.PlayerStats(context.Background(), "alice")
	if err != nil {
		t.Fatalf("PlayerStats: %v", err)
	}
	if ps == nil {
		t.Fatalf("expected stats for alice")
	}
	if ps.Games != 3 || ps.Wins != 1 || ps.Fails != 1 || ps.BestScore != 2 {
		t.Fatalf("unexpected profile: %+v", ps)
	}
	if ps.Average != 3.0 {
		t.Fatalf("average = %v, want 3.0", ps.Average)
	}
	if ps.Distribution[2] != 1 || ps.Distribution[4] != 1 || ps.Distribution[domain.FailScore] != 1 {
		t.Fatalf("unexpected distribution: %v", ps.Distribution)
	}

	none, err := svc.PlayerStats(context.Background(), "nobody")
	if err != nil || none != nil {
		t.Fatalf("missing player should yield nil, nil: %+v err=%v", none, err)
	}
}

func TestHistoryGroupsByDay(t *testing.T) {
	svc, _ := newTestService(t, []domain.GameResult{
		res("m1", "alice", 5, false, "2024-01-01"),
		res("m1", "bob", 3, true, "2024-01-01"),
		res("m2", "alice", 2, true, "2024-01-02"),
	})

	hist, err := svc.History(context.Background(), 7)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 2 || !hist[0].Date.Equal(day("2024-01-02")) {
		t.Fatalf("expected newest day first, got %+v", hist)
	}
	if hist[1].Results[0].PlayerName != "bob" {
		t.Fatalf("within a day best score goes first: %+v", hist[1].Results)
	}
}

func TestEmptyDataSetYieldsEmptyResults(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	if lb, err := svc.Leaderboard(ctx, 10); err != nil || len(lb) != 0 {
		t.Fatalf("Leaderboard on empty set: %v %v", lb, err)
	}
	if info, err := svc.Streaks(ctx); err != nil || info.Current != 0 || info.Best != 0 {
		t.Fatalf("Streaks on empty set: %+v %v", info, err)
	}
	if ov, err := svc.Overview(ctx); err != nil || ov.TotalResults != 0 {
		t.Fatalf("Overview on empty set: %+v %v", ov, err)
	}
	if entries, err := svc.Participation(ctx); err != nil || entries != nil {
		t.Fatalf("Participation on empty set: %v %v", entries, err)
	}
}

func TestOverview(t *testing.T) {
	svc, _ := newTestService(t, []domain.GameResult{
		res("m1", "alice", 3, true, "2024-01-01"),
		res("m2", "bob", 4, false, "2024-01-05"),
	})
	ov, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if ov.TotalResults != 2 || ov.UniquePlayers != 2 || ov.DaysTracked != 2 {
		t.Fatalf("unexpected overview: %+v", ov)
	}
	if !ov.FirstDate.Equal(day("2024-01-01")) || !ov.LastDate.Equal(day("2024-01-05")) {
		t.Fatalf("unexpected date range: %+v", ov)
	}
}
