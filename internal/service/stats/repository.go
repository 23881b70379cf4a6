package stats

import (
	"context"
	"errors"
	"time"

	"github.com/kapu/wordle-stats-bot/internal/domain"
)

// ErrStorage marks persistence-substrate failures. Startup treats it as
// fatal; in-flight inserts and queries may be retried.
var ErrStorage = errors.New("results storage failure")

// Filter narrows a Query. Zero values leave a dimension unbounded.
type Filter struct {
	Player      string
	From        time.Time
	To          time.Time
	PuzzleFrom  int
	PuzzleTo    int
	OrderByDate bool
}

// Repository is the durable, append-only home of GameResult records.
// Insert is idempotent on (source_message_id, player_name): re-inserting an
// overlapping batch writes only the net-new rows and reports their count.
type Repository interface {
	Insert(ctx context.Context, results []domain.GameResult) (int, error)
	Query(ctx context.Context, f Filter) ([]domain.GameResult, error)
	AllPlayers(ctx context.Context) ([]string, error)
	Close() error
}
