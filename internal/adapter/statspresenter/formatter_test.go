package statspresenter

import (
	"strings"
	"testing"
	"time"

	"github.com/kapu/wordle-stats-bot/internal/domain"
	stats "github.com/kapu/wordle-stats-bot/internal/service/stats"
)

type staticPrefix string

func (p staticPrefix) Prefix() string { return string(p) }

func newTestFormatter() *Formatter {
	return NewFormatter(staticPrefix("!"))
}

func TestLeaderboardRendersMedalsAndRanks(t *testing.T) {
	f := newTestFormatter()
	out := f.Leaderboard([]stats.LeaderboardEntry{
		{Player: "alice", Wins: 12},
		{Player: "bob", Wins: 7},
		{Player: "carol", Wins: 7},
		{Player: "dave", Wins: 1},
	})
	for _, want := range []string{"🥇 alice — 12 wins", "🥈 bob", "🥉 carol", "4. dave — 1 win"} {
		if !strings.Contains(out, want) {
			t.Fatalf("leaderboard missing %q in:\n%s", want, out)
		}
	}
}

func TestLeaderboardEmptyReturnsNothing(t *testing.T) {
	f := newTestFormatter()
	if out := f.Leaderboard(nil); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestHistoryMarksFailsAndWinners(t *testing.T) {
	f := newTestFormatter()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out := f.History([]stats.DaySummary{{
		Date: day,
		Results: []domain.GameResult{
			{PlayerName: "alice", Score: 3, IsWinner: true, Date: day},
			{PlayerName: "bob", Score: domain.FailScore, Date: day},
		},
	}})
	if !strings.Contains(out, "3/6 alice 👑") {
		t.Fatalf("winner line missing in:\n%s", out)
	}
	if !strings.Contains(out, "X/6 bob") {
		t.Fatalf("fail line missing in:\n%s", out)
	}
}

func TestHeadToHeadNamesTheLeader(t *testing.T) {
	f := newTestFormatter()
	out := f.HeadToHead(stats.HeadToHead{
		PlayerA: "alice", PlayerB: "bob",
		Overlap: 5, WinsA: 3, WinsB: 1, Ties: 1,
	})
	if !strings.Contains(out, "alice leads.") {
		t.Fatalf("leader missing in:\n%s", out)
	}

	out = f.HeadToHead(stats.HeadToHead{PlayerA: "alice", PlayerB: "bob", Overlap: 2, WinsA: 1, WinsB: 1})
	if !strings.Contains(out, "Dead even.") {
		t.Fatalf("tie summary missing in:\n%s", out)
	}

	out = f.HeadToHead(stats.HeadToHead{PlayerA: "alice", PlayerB: "zed"})
	if !strings.Contains(out, "never played on the same day") {
		t.Fatalf("no-overlap summary missing in:\n%s", out)
	}
}

func TestHelpMentionsEveryCommand(t *testing.T) {
	f := newTestFormatter()
	out := f.Help()
	for _, cmd := range []string{"leaderboard", "average", "streak", "stats", "h2h", "luck", "whowins", "participation", "history", "players", "chart", "dbstats"} {
		if !strings.Contains(out, "!wordle "+cmd) {
			t.Fatalf("help missing command %q", cmd)
		}
	}
}

func TestPlayerStatsDistributionBars(t *testing.T) {
	f := newTestFormatter()
	out := f.PlayerStats(&stats.PlayerStats{
		Player:       "alice",
		Games:        10,
		Wins:         4,
		WinRate:      0.4,
		Average:      3.5,
		BestScore:    2,
		Distribution: map[int]int{2: 1, 3: 5, 4: 4},
	})
	if !strings.Contains(out, "Guess distribution:") {
		t.Fatalf("distribution header missing in:\n%s", out)
	}
	if !strings.Contains(out, "3/6") || !strings.Contains(out, "🟩") {
		t.Fatalf("distribution bars missing in:\n%s", out)
	}
}
