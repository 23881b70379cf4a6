package statspresenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/kapu/wordle-stats-bot/internal/domain"
	stats "github.com/kapu/wordle-stats-bot/internal/service/stats"
	"github.com/kapu/wordle-stats-bot/internal/util"
)

const (
	helpInstruction          = "🟩 Wordle Bot Commands"
	leaderboardInstruction   = "🏆 Wordle Leaderboard"
	averagesInstruction      = "📊 Average Guesses"
	streakInstruction        = "🔥 Group Streak"
	luckInstruction          = "🍀 Luck Rankings"
	participationInstruction = "📅 Participation"
	whoWinsInstruction       = "🗓️ Weekday Champions"
	playerInstruction        = "🙋 Player Profile"
	historyInstruction       = "📖 Recent Results"
	playersInstruction       = "👥 Tracked Players"
	overviewInstruction      = "🧮 Database Overview"
)

// PrefixProvider exposes the Prefix that Kakao messages should use.
type PrefixProvider interface {
	Prefix() string
}

// Formatter renders stats results into Kakao-friendly text blocks.
type Formatter struct {
	prefixProvider PrefixProvider
}

func NewFormatter(provider PrefixProvider) *Formatter {
	return &Formatter{prefixProvider: provider}
}

func (f *Formatter) Prefix() string {
	if f == nil || f.prefixProvider == nil {
		return ""
	}
	return strings.TrimSpace(f.prefixProvider.Prefix())
}

func (f *Formatter) Help() string {
	content := fmt.Sprintf(`%s
• %swordle leaderboard [n]
  Wins ranking (crowned or best score of the day)
• %swordle average
  Mean guesses per player, fails listed separately
• %swordle streak
  Current and best run of consecutive played days
• %swordle stats [player]
  One player's full profile (defaults to you)
• %swordle h2h <player> <player>
  Head-to-head on shared days
• %swordle luck [n]
  Share of 1-2 guess finishes
• %swordle whowins
  Best player per weekday
• %swordle participation
  Played days per player
• %swordle history [n]
  Recent daily results (default 7 days)
• %swordle players
  Everyone on record
• %swordle chart <type>
  Chart image: leaderboard, average, luck, participation, distribution, h2h
• %swordle dbstats
  Data set overview`, helpInstruction,
		f.Prefix(), f.Prefix(), f.Prefix(), f.Prefix(), f.Prefix(), f.Prefix(),
		f.Prefix(), f.Prefix(), f.Prefix(), f.Prefix(), f.Prefix(), f.Prefix())

	return util.ApplySeeMoreWithHeader(content, helpInstruction, helpInstruction, "")
}

func (f *Formatter) Leaderboard(entries []stats.LeaderboardEntry) string {
	if len(entries) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(leaderboardInstruction)
	sb.WriteByte('\n')
	for i, e := range entries {
		sb.WriteString(fmt.Sprintf("%s %s — %d %s\n", rankBadge(i), e.Player, e.Wins, pluralize(e.Wins, "win", "wins")))
	}
	sb.WriteString(fmt.Sprintf("\nPlayer details: `%swordle stats <player>`", f.Prefix()))
	return util.ApplySeeMoreWithHeader(sb.String(), leaderboardInstruction, leaderboardInstruction, "")
}

func (f *Formatter) Averages(entries []stats.AverageEntry) string {
	if len(entries) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(averagesInstruction)
	sb.WriteByte('\n')
	for _, e := range entries {
		if e.Games == 0 {
			sb.WriteString(fmt.Sprintf("• %s — no solves (%d X)\n", e.Player, e.Fails))
			continue
		}
		line := fmt.Sprintf("• %s — %.2f over %d solved", e.Player, e.Average, e.Games)
		if e.Fails > 0 {
			line += fmt.Sprintf(" (%d X)", e.Fails)
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return util.ApplySeeMoreWithHeader(sb.String(), averagesInstruction, averagesInstruction, "")
}

func (f *Formatter) Streak(info stats.StreakInfo) string {
	var sb strings.Builder
	sb.WriteString(streakInstruction)
	sb.WriteByte('\n')
	sb.WriteString(fmt.Sprintf("• Current: %d %s\n", info.Current, pluralize(info.Current, "day", "days")))
	sb.WriteString(fmt.Sprintf("• Best: %d %s\n", info.Best, pluralize(info.Best, "day", "days")))
	if !info.LastPlayed.IsZero() {
		sb.WriteString(fmt.Sprintf("• Last played: %s", formatDay(info.LastPlayed)))
	}
	return sb.String()
}

func (f *Formatter) Luck(entries []stats.LuckEntry, minAttempts int) string {
	if len(entries) == 0 {
		return fmt.Sprintf("Nobody has %d attempts on record yet.", minAttempts)
	}
	var sb strings.Builder
	sb.WriteString(luckInstruction)
	sb.WriteByte('\n')
	for i, e := range entries {
		sb.WriteString(fmt.Sprintf("%s %s — %.0f%% (%d of %d in 1-2 guesses)\n",
			rankBadge(i), e.Player, e.Rate*100, e.Lucky, e.Attempts))
	}
	sb.WriteString(fmt.Sprintf("\nMinimum %d attempts to qualify.", minAttempts))
	return util.ApplySeeMoreWithHeader(sb.String(), luckInstruction, luckInstruction, "")
}

func (f *Formatter) Participation(entries []stats.ParticipationEntry) string {
	if len(entries) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(participationInstruction)
	sb.WriteByte('\n')
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("• %s — %d/%d days (%.0f%%)\n", e.Player, e.DaysPlayed, e.TotalDays, e.Rate*100))
	}
	return util.ApplySeeMoreWithHeader(sb.String(), participationInstruction, participationInstruction, "")
}

func (f *Formatter) HeadToHead(h stats.HeadToHead) string {
	if h.Overlap == 0 {
		return fmt.Sprintf("%s and %s have never played on the same day.", h.PlayerA, h.PlayerB)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⚔️ %s vs %s\n", h.PlayerA, h.PlayerB))
	sb.WriteString(fmt.Sprintf("• Shared days: %d\n", h.Overlap))
	sb.WriteString(fmt.Sprintf("• %s: %d %s\n", h.PlayerA, h.WinsA, pluralize(h.WinsA, "win", "wins")))
	sb.WriteString(fmt.Sprintf("• %s: %d %s\n", h.PlayerB, h.WinsB, pluralize(h.WinsB, "win", "wins")))
	if h.Ties > 0 {
		sb.WriteString(fmt.Sprintf("• Ties: %d\n", h.Ties))
	}
	switch {
	case h.WinsA > h.WinsB:
		sb.WriteString(fmt.Sprintf("\n%s leads.", h.PlayerA))
	case h.WinsB > h.WinsA:
		sb.WriteString(fmt.Sprintf("\n%s leads.", h.PlayerB))
	default:
		sb.WriteString("\nDead even.")
	}
	return sb.String()
}

func (f *Formatter) WhoWins(winners []stats.WeekdayWinner) string {
	if len(winners) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(whoWinsInstruction)
	sb.WriteByte('\n')
	for _, w := range winners {
		sb.WriteString(fmt.Sprintf("• %s — %s (%d %s)\n", w.Weekday, w.Player, w.Wins, pluralize(w.Wins, "win", "wins")))
	}
	return util.ApplySeeMoreWithHeader(sb.String(), whoWinsInstruction, whoWinsInstruction, "")
}

func (f *Formatter) PlayerStats(p *stats.PlayerStats) string {
	if p == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(playerInstruction)
	sb.WriteByte('\n')
	sb.WriteString(fmt.Sprintf("• Player: %s\n", p.Player))
	sb.WriteString(fmt.Sprintf("• Games: %d\n", p.Games))
	sb.WriteString(fmt.Sprintf("• Wins: %d (%.0f%%)\n", p.Wins, p.WinRate*100))
	if p.Games > p.Fails {
		sb.WriteString(fmt.Sprintf("• Average: %.2f\n", p.Average))
	}
	if p.BestScore > 0 {
		sb.WriteString(fmt.Sprintf("• Best: %d/6\n", p.BestScore))
	}
	if p.Fails > 0 {
		sb.WriteString(fmt.Sprintf("• Fails: %d (%.0f%%)\n", p.Fails, p.FailRate*100))
	}
	if dist := formatDistribution(p.Distribution); dist != "" {
		sb.WriteString("\nGuess distribution:\n")
		sb.WriteString(dist)
	}
	return util.ApplySeeMoreWithHeader(sb.String(), playerInstruction, playerInstruction, " — "+p.Player)
}

func (f *Formatter) History(days []stats.DaySummary) string {
	if len(days) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(historyInstruction)
	sb.WriteByte('\n')
	for _, d := range days {
		sb.WriteString(fmt.Sprintf("\n%s\n", formatDay(d.Date)))
		for _, r := range d.Results {
			badge := ""
			if r.IsWinner {
				badge = " 👑"
			}
			sb.WriteString(fmt.Sprintf("• %s %s%s\n", formatScore(r.Score), r.PlayerName, badge))
		}
	}
	return util.ApplySeeMoreWithHeader(sb.String(), historyInstruction, historyInstruction, "")
}

func (f *Formatter) Players(players []stats.PlayerCount) string {
	if len(players) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(playersInstruction)
	sb.WriteByte('\n')
	for _, p := range players {
		sb.WriteString(fmt.Sprintf("• %s — %d %s\n", p.Player, p.Games, pluralize(p.Games, "game", "games")))
	}
	return util.ApplySeeMoreWithHeader(sb.String(), playersInstruction, playersInstruction, "")
}

func (f *Formatter) Overview(o stats.Overview) string {
	var sb strings.Builder
	sb.WriteString(overviewInstruction)
	sb.WriteByte('\n')
	sb.WriteString(fmt.Sprintf("• Results: %d\n", o.TotalResults))
	sb.WriteString(fmt.Sprintf("• Players: %d\n", o.UniquePlayers))
	sb.WriteString(fmt.Sprintf("• Days tracked: %d\n", o.DaysTracked))
	if !o.FirstDate.IsZero() {
		sb.WriteString(fmt.Sprintf("• Range: %s ~ %s", formatDay(o.FirstDate), formatDay(o.LastDate)))
	}
	return sb.String()
}

func formatScore(score int) string {
	if score >= domain.FailScore {
		return "X/6"
	}
	return fmt.Sprintf("%d/6", score)
}

func formatDistribution(dist map[int]int) string {
	if len(dist) == 0 {
		return ""
	}
	max := 0
	for s := 1; s <= domain.FailScore; s++ {
		if dist[s] > max {
			max = dist[s]
		}
	}
	if max == 0 {
		return ""
	}
	const barWidth = 10
	var sb strings.Builder
	for s := 1; s <= domain.FailScore; s++ {
		n := dist[s]
		if n == 0 && s == domain.FailScore {
			continue
		}
		bar := strings.Repeat("🟩", n*barWidth/max)
		if n > 0 && bar == "" {
			bar = "🟩"
		}
		sb.WriteString(fmt.Sprintf("%s %s %d\n", formatScore(s), bar, n))
	}
	return sb.String()
}

func rankBadge(i int) string {
	switch i {
	case 0:
		return "🥇"
	case 1:
		return "🥈"
	case 2:
		return "🥉"
	default:
		return fmt.Sprintf("%d.", i+1)
	}
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 (Mon)")
}
