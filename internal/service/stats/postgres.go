package stats

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/kapu/wordle-stats-bot/internal/domain"
)

type pgRepository struct {
	db *sql.DB
}

// NewPostgresRepository opens the results database and prepares the schema.
// A failed ping here is fatal for the caller.
func NewPostgresRepository(databaseURL string) (Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: open postgres: %v", ErrStorage, err)
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: ping postgres: %v", ErrStorage, err)
	}
	r := &pgRepository{db: db}
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *pgRepository) ensureSchema(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS wordle_results (
			id                BIGSERIAL PRIMARY KEY,
			source_message_id TEXT        NOT NULL,
			player_name       TEXT        NOT NULL,
			puzzle_number     INTEGER     NOT NULL DEFAULT 0,
			score             INTEGER     NOT NULL,
			is_winner         BOOLEAN     NOT NULL DEFAULT FALSE,
			result_date       DATE        NOT NULL,
			streak_count      INTEGER,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (source_message_id, player_name)
		)`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: create schema: %v", ErrStorage, err)
	}
	for _, idx := range []string{
		`CREATE INDEX IF NOT EXISTS idx_wordle_results_date ON wordle_results(result_date)`,
		`CREATE INDEX IF NOT EXISTS idx_wordle_results_player ON wordle_results(player_name)`,
		`CREATE INDEX IF NOT EXISTS idx_wordle_results_winner ON wordle_results(is_winner)`,
	} {
		if _, err := r.db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("%w: create index: %v", ErrStorage, err)
		}
	}
	return nil
}

func (r *pgRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *pgRepository) Insert(ctx context.Context, results []domain.GameResult) (int, error) {
	const query = `
		INSERT INTO wordle_results (
			source_message_id, player_name, puzzle_number,
			score, is_winner, result_date, streak_count
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (source_message_id, player_name) DO NOTHING`

	inserted := 0
	for _, res := range results {
		var streak sql.NullInt64
		if res.StreakCount != nil {
			streak = sql.NullInt64{Int64: int64(*res.StreakCount), Valid: true}
		}
		tag, err := r.db.ExecContext(ctx, query,
			res.SourceMessageID,
			res.PlayerName,
			res.PuzzleNumber,
			res.Score,
			res.IsWinner,
			res.Date,
			streak,
		)
		if err != nil {
			return inserted, fmt.Errorf("%w: insert result: %v", ErrStorage, err)
		}
		n, err := tag.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("%w: rows affected: %v", ErrStorage, err)
		}
		inserted += int(n)
	}
	return inserted, nil
}

func (r *pgRepository) Query(ctx context.Context, f Filter) ([]domain.GameResult, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`
		SELECT id, source_message_id, player_name, puzzle_number,
		       score, is_winner, result_date, streak_count, created_at
		FROM wordle_results`)

	var conds []string
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Player != "" {
		conds = append(conds, "player_name = "+arg(f.Player))
	}
	if !f.From.IsZero() {
		conds = append(conds, "result_date >= "+arg(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "result_date <= "+arg(f.To))
	}
	if f.PuzzleFrom > 0 {
		conds = append(conds, "puzzle_number >= "+arg(f.PuzzleFrom))
	}
	if f.PuzzleTo > 0 {
		conds = append(conds, "puzzle_number <= "+arg(f.PuzzleTo))
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	if f.OrderByDate {
		sb.WriteString(" ORDER BY result_date, id")
	} else {
		sb.WriteString(" ORDER BY id")
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: select results: %v", ErrStorage, err)
	}
	defer rows.Close()

	var out []domain.GameResult
	for rows.Next() {
		var (
			res    domain.GameResult
			streak sql.NullInt64
		)
		if err := rows.Scan(
			&res.ID,
			&res.SourceMessageID,
			&res.PlayerName,
			&res.PuzzleNumber,
			&res.Score,
			&res.IsWinner,
			&res.Date,
			&streak,
			&res.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scan result: %v", ErrStorage, err)
		}
		if streak.Valid {
			n := int(streak.Int64)
			res.StreakCount = &n
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate results: %v", ErrStorage, err)
	}
	return out, nil
}

func (r *pgRepository) AllPlayers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT player_name FROM wordle_results ORDER BY player_name`)
	if err != nil {
		return nil, fmt.Errorf("%w: select players: %v", ErrStorage, err)
	}
	defer rows.Close()

	var players []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scan player: %v", ErrStorage, err)
		}
		players = append(players, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate players: %v", ErrStorage, err)
	}
	return players, nil
}
