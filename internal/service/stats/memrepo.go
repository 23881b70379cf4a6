package stats

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kapu/wordle-stats-bot/internal/domain"
)

// memrepo is an in-memory Repository used for tests and local development
// without a database.
type memrepo struct {
	mu sync.RWMutex

	nextID  int64
	results []domain.GameResult
	index   map[string]struct{} // sourceMessageID|playerName
}

func NewMemoryRepository() Repository {
	return &memrepo{index: make(map[string]struct{})}
}

func (m *memrepo) Close() error { return nil }

func (m *memrepo) Insert(ctx context.Context, results []domain.GameResult) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inserted := 0
	for _, res := range results {
		key := res.SourceMessageID + "|" + res.PlayerName
		if _, exists := m.index[key]; exists {
			continue
		}
		m.nextID++
		res.ID = m.nextID
		if res.CreatedAt.IsZero() {
			res.CreatedAt = time.Now()
		}
		m.index[key] = struct{}{}
		m.results = append(m.results, res)
		inserted++
	}
	return inserted, nil
}

func (m *memrepo) Query(ctx context.Context, f Filter) ([]domain.GameResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.GameResult, 0, len(m.results))
	for _, res := range m.results {
		if f.Player != "" && res.PlayerName != f.Player {
			continue
		}
		if !f.From.IsZero() && res.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && res.Date.After(f.To) {
			continue
		}
		if f.PuzzleFrom > 0 && res.PuzzleNumber < f.PuzzleFrom {
			continue
		}
		if f.PuzzleTo > 0 && res.PuzzleNumber > f.PuzzleTo {
			continue
		}
		out = append(out, res)
	}
	if f.OrderByDate {
		sort.SliceStable(out, func(i, j int) bool {
			if !out[i].Date.Equal(out[j].Date) {
				return out[i].Date.Before(out[j].Date)
			}
			return out[i].ID < out[j].ID
		})
	}
	return out, nil
}

func (m *memrepo) AllPlayers(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	var players []string
	for _, res := range m.results {
		if _, ok := seen[res.PlayerName]; ok {
			continue
		}
		seen[res.PlayerName] = struct{}{}
		players = append(players, res.PlayerName)
	}
	sort.Strings(players)
	return players, nil
}
