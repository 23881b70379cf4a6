package wordle

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kapu/wordle-stats-bot/internal/domain"
)

const crownMark = "👑"

// entry is one player's score salvaged from a message, before winner
// resolution and de-duplication.
type entry struct {
	player  string
	score   int
	crowned bool
}

// layoutMatcher recognizes one message layout. Matchers are pure and
// independent; they are tried in order and the first match wins. New layouts
// are added as new matchers, never by branching inside an existing one.
type layoutMatcher func(text string) ([]entry, bool)

var matchers = []layoutMatcher{
	matchScoreboard,
	matchShareList,
}

var (
	puzzleRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)wordle\s+#?([\d,]+)`),
		regexp.MustCompile(`#(\d+)`),
		regexp.MustCompile(`(?i)puzzle\s+(\d+)`),
	}
	streakRe    = regexp.MustCompile(`(?i)(\d+)\s+day\s+streak`)
	segmentRe   = regexp.MustCompile(`(?i)(?:` + crownMark + `\s*)?[1-6X]\s*/\s*6\s*:`)
	scoreRe     = regexp.MustCompile(`(?i)([1-6X])\s*/\s*6`)
	mentionRe   = regexp.MustCompile(`@([\w.]+)`)
	nameScoreRe = regexp.MustCompile(`(?i)^\s*([^:@]+?)\s*[:\-]\s*([1-6X])\s*/\s*6\s*[.!]?\s*$`)
)

// Parse converts one raw message body into zero or more GameResult records.
// Text that matches no known layout yields an empty slice; that is a normal
// "no data" outcome, not an error. Malformed lines inside a recognized
// message are skipped individually and the rest salvaged.
func Parse(raw, messageID string, date time.Time) []domain.GameResult {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}

	var entries []entry
	for _, match := range matchers {
		if found, ok := match(text); ok {
			entries = found
			break
		}
	}
	if len(entries) == 0 {
		return nil
	}

	entries = dedupe(entries)
	winners := resolveWinners(entries)

	puzzle := ExtractPuzzleNumber(text)
	streak := ExtractStreak(text)

	day := domain.Day(date)
	results := make([]domain.GameResult, 0, len(entries))
	for _, e := range entries {
		results = append(results, domain.GameResult{
			PuzzleNumber:    puzzle,
			PlayerName:      e.player,
			Score:           e.score,
			IsWinner:        winners[e.player],
			Date:            day,
			SourceMessageID: messageID,
			StreakCount:     streak,
		})
	}
	return results
}

// matchScoreboard handles the group bot's own announcement, both multi-line
//
//	Your group is on a 95 day streak! Here are yesterday's results:
//	👑 3/6: @alice
//	4/6: @bob @carol
//
// and the packed single-line variant where several "N/6: @names" segments
// share one line.
func matchScoreboard(text string) ([]entry, bool) {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "streak") && !strings.Contains(lower, "results") {
		return nil, false
	}

	var entries []entry
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, "/6") {
			continue
		}
		for _, seg := range splitSegments(line) {
			entries = append(entries, parseSegment(seg)...)
		}
	}
	if len(entries) == 0 {
		return nil, false
	}
	return entries, true
}

// matchShareList handles hand-posted score lists of the form
//
//	Wordle 1,234 3/6
//	Alice: 3/6
//	Bob: 4/6
//
// with no crown marks; winners are derived from the minimum score.
func matchShareList(text string) ([]entry, bool) {
	lines := strings.Split(text, "\n")
	if !puzzleRes[0].MatchString(lines[0]) {
		return nil, false
	}

	var entries []entry
	for _, line := range lines[1:] {
		m := nameScoreRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		score, ok := parseScoreToken(m[2])
		if !ok {
			continue
		}
		name := cleanPlayerName(m[1])
		if name == "" {
			continue
		}
		entries = append(entries, entry{player: name, score: score})
	}
	if len(entries) == 0 {
		return nil, false
	}
	return entries, true
}

// splitSegments cuts a line into per-score segments, each starting at a
// (possibly crowned) "N/6:" token. A line with a single score comes back
// whole.
func splitSegments(line string) []string {
	idx := segmentRe.FindAllStringIndex(line, -1)
	if len(idx) <= 1 {
		return []string{line}
	}
	segs := make([]string, 0, len(idx))
	for i, loc := range idx {
		end := len(line)
		if i+1 < len(idx) {
			end = idx[i+1][0]
		}
		segs = append(segs, line[loc[0]:end])
	}
	return segs
}

// parseSegment salvages every player mentioned after one score token.
// Segments without a recognizable score or mention are dropped.
func parseSegment(seg string) []entry {
	m := scoreRe.FindStringSubmatch(seg)
	if m == nil {
		return nil
	}
	score, ok := parseScoreToken(m[1])
	if !ok {
		return nil
	}
	crowned := strings.Contains(seg, crownMark)

	var entries []entry
	for _, pm := range mentionRe.FindAllStringSubmatch(seg, -1) {
		name := cleanPlayerName(pm[1])
		if name == "" {
			continue
		}
		entries = append(entries, entry{player: name, score: score, crowned: crowned})
	}
	return entries
}

func parseScoreToken(tok string) (int, bool) {
	tok = strings.TrimSpace(tok)
	if strings.EqualFold(tok, "x") {
		return domain.FailScore, true
	}
	n, err := strconv.Atoi(tok)
	if err != nil || n < 1 || n > 6 {
		return 0, false
	}
	return n, true
}

func cleanPlayerName(name string) string {
	return strings.TrimLeft(strings.TrimSpace(name), "@")
}

// dedupe collapses duplicate player names; the last occurrence wins while
// first-seen order is kept.
func dedupe(entries []entry) []entry {
	byName := make(map[string]int, len(entries))
	out := make([]entry, 0, len(entries))
	for _, e := range entries {
		if i, ok := byName[e.player]; ok {
			out[i] = e
			continue
		}
		byName[e.player] = len(out)
		out = append(out, e)
	}
	return out
}

// resolveWinners applies the two-step winner policy: crown-marked entries are
// trusted when at least one carries a solving score; otherwise winners are
// every player tied at the minimum numeric score. Failed attempts never win.
func resolveWinners(entries []entry) map[string]bool {
	winners := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.crowned && e.score < domain.FailScore {
			winners[e.player] = true
		}
	}
	if len(winners) > 0 {
		return winners
	}

	best := domain.FailScore
	for _, e := range entries {
		if e.score < best {
			best = e.score
		}
	}
	if best == domain.FailScore {
		return winners
	}
	for _, e := range entries {
		if e.score == best {
			winners[e.player] = true
		}
	}
	return winners
}

// ExtractPuzzleNumber pulls the puzzle identifier out of the message text.
// Returns 0 when absent. Thousands separators ("Wordle 1,234") are accepted.
func ExtractPuzzleNumber(text string) int {
	for _, re := range puzzleRes {
		if m := re.FindStringSubmatch(text); m != nil {
			n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
			if err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}

// ExtractStreak pulls the group streak count out of a "N day streak" phrase.
// Absence leaves it unset, not zero.
func ExtractStreak(text string) *int {
	m := streakRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

// ResultDate maps a message timestamp to the calendar day its scores belong
// to. The group bot announces "yesterday's results", so those roll back one
// day; anything else is stamped with the posting day.
func ResultDate(text string, posted time.Time) time.Time {
	if strings.Contains(strings.ToLower(text), "yesterday") {
		return domain.Day(posted.AddDate(0, 0, -1))
	}
	return domain.Day(posted)
}
