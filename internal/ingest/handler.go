package ingest

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/wordle-stats-bot/internal/irisfast"
	stats "github.com/kapu/wordle-stats-bot/internal/service/stats"
	"github.com/kapu/wordle-stats-bot/internal/wordle"
)

// Invalidator drops cached aggregates after new results land.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Handler watches the room's live traffic and stores any Wordle results the
// game bot posts. Everything else passes through untouched.
type Handler struct {
	store  stats.Repository
	cache  Invalidator
	room   string
	botID  string
	logger *zap.Logger

	now func() time.Time
}

func NewHandler(store stats.Repository, cache Invalidator, room, botID string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:  store,
		cache:  cache,
		room:   strings.TrimSpace(room),
		botID:  strings.TrimSpace(botID),
		logger: logger,
		now:    time.Now,
	}
}

// Handle parses one live message and returns how many new results were stored.
// Replayed messages insert nothing thanks to the store's dedup key.
func (h *Handler) Handle(ctx context.Context, msg *irisfast.Message) (int, error) {
	if msg == nil || strings.TrimSpace(msg.Msg) == "" {
		return 0, nil
	}
	if h.room != "" && msg.Room != h.room {
		return 0, nil
	}
	if h.botID != "" && authorID(msg) != h.botID {
		return 0, nil
	}

	logID := messageID(msg)
	if logID == "" {
		h.logger.Warn("ingest_missing_log_id", zap.String("room", msg.Room))
		return 0, nil
	}

	posted := h.now().UTC()
	date := wordle.ResultDate(msg.Msg, posted)
	results := wordle.Parse(msg.Msg, logID, date)
	if len(results) == 0 {
		return 0, nil
	}

	n, err := h.store.Insert(ctx, results)
	if err != nil {
		h.logger.Error("ingest_insert_failed", zap.String("log_id", logID), zap.Error(err))
		return 0, err
	}
	if n > 0 {
		h.logger.Info("ingest_stored",
			zap.String("log_id", logID),
			zap.Int("parsed", len(results)),
			zap.Int("inserted", n),
			zap.Time("date", date))
		if h.cache != nil {
			if cerr := h.cache.Invalidate(ctx); cerr != nil {
				h.logger.Warn("ingest_cache_invalidate_failed", zap.Error(cerr))
			}
		}
	}
	return n, nil
}

func authorID(msg *irisfast.Message) string {
	if msg.JSON != nil && msg.JSON.UserID != "" {
		return msg.JSON.UserID
	}
	if msg.Sender != nil {
		return strings.TrimSpace(*msg.Sender)
	}
	return ""
}

func messageID(msg *irisfast.Message) string {
	if msg.JSON != nil {
		return strings.TrimSpace(msg.JSON.LogID)
	}
	return ""
}
