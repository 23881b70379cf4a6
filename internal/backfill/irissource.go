package backfill

import (
	"context"
	"time"

	"github.com/kapu/wordle-stats-bot/internal/irisfast"
)

// IrisSource feeds a backfill run from the Iris bridge's chat log API.
type IrisSource struct {
	client *irisfast.Client
	room   string
}

func NewIrisSource(client *irisfast.Client, room string) *IrisSource {
	return &IrisSource{client: client, room: room}
}

func (s *IrisSource) Messages(ctx context.Context, offset, limit int) ([]Message, error) {
	logs, err := s.client.ChatLogs(ctx, s.room, offset, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Message, 0, len(logs))
	for _, l := range logs {
		out = append(out, Message{
			ID:       l.LogID,
			AuthorID: l.UserID,
			Room:     l.Room,
			Text:     l.Message,
			PostedAt: time.Unix(l.Timestamp, 0).UTC(),
		})
	}
	return out, nil
}
