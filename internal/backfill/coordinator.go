package backfill

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kapu/wordle-stats-bot/internal/service/stats"
	"github.com/kapu/wordle-stats-bot/internal/wordle"
)

const defaultPageSize = 50

// Message is one historical chat message as seen by the coordinator.
type Message struct {
	ID       string
	AuthorID string
	Room     string
	Text     string
	PostedAt time.Time
}

// Source pages through a room's message history oldest-to-newest. Replay is
// deterministic in that order, which is why the coordinator walks forward
// rather than backward.
type Source interface {
	Messages(ctx context.Context, offset, limit int) ([]Message, error)
}

// Report tallies one backfill run, in message units: Scanned covers every
// fetched message, Parsed those that yielded at least one result, Inserted
// those that contributed at least one net-new record. Records is the net-new
// record count across all messages.
type Report struct {
	RunID    string
	Scanned  int
	Parsed   int
	Inserted int
	Records  int
}

// Coordinator replays historical channel messages through the parser into
// the store. Progress already inserted is never rolled back, whatever ends
// the run.
type Coordinator struct {
	store    stats.Repository
	botID    string
	pageSize int
	logger   *zap.Logger
}

func New(store stats.Repository, botID string, pageSize int, logger *zap.Logger) *Coordinator {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		store:    store,
		botID:    strings.TrimSpace(botID),
		pageSize: pageSize,
		logger:   logger,
	}
}

// Run walks up to maxMessages history entries. Parser misses and duplicate
// records are counted, never fatal; only storage failures and context
// cancellation end the run early, returning the tallies so far.
func (c *Coordinator) Run(ctx context.Context, source Source, maxMessages int) (Report, error) {
	report := Report{RunID: uuid.NewString()}
	log := c.logger.With(zap.String("run_id", report.RunID))
	log.Info("backfill_start", zap.Int("max_messages", maxMessages))

	offset := 0
	for maxMessages <= 0 || report.Scanned < maxMessages {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		limit := c.pageSize
		if maxMessages > 0 && maxMessages-report.Scanned < limit {
			limit = maxMessages - report.Scanned
		}
		page, err := source.Messages(ctx, offset, limit)
		if err != nil {
			return report, err
		}
		if len(page) == 0 {
			break
		}
		offset += len(page)

		for _, msg := range page {
			report.Scanned++
			if c.botID != "" && msg.AuthorID != c.botID {
				continue
			}
			results := wordle.Parse(msg.Text, msg.ID, wordle.ResultDate(msg.Text, msg.PostedAt))
			if len(results) == 0 {
				continue
			}
			report.Parsed++

			n, err := c.store.Insert(ctx, results)
			if err != nil {
				return report, err
			}
			if n > 0 {
				report.Inserted++
				report.Records += n
			}
		}

		log.Debug("backfill_page",
			zap.Int("scanned", report.Scanned),
			zap.Int("parsed", report.Parsed),
			zap.Int("inserted", report.Inserted),
		)
	}

	log.Info("backfill_done",
		zap.Int("scanned", report.Scanned),
		zap.Int("parsed", report.Parsed),
		zap.Int("inserted", report.Inserted),
		zap.Int("records", report.Records),
	)
	return report, nil
}
