package backfill

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kapu/wordle-stats-bot/internal/service/stats"
	"github.com/kapu/wordle-stats-bot/internal/wordle"
)

const botID = "wordlebot"

type sliceSource struct {
	msgs []Message
}

func (s *sliceSource) Messages(ctx context.Context, offset, limit int) ([]Message, error) {
	if offset >= len(s.msgs) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.msgs) {
		end = len(s.msgs)
	}
	return s.msgs[offset:end], nil
}

func resultMessage(id string, day int) Message {
	return Message{
		ID:       id,
		AuthorID: botID,
		Text:     "Here are yesterday's results:\n👑 3/6: @alice\n4/6: @bob",
		PostedAt: time.Date(2024, 1, day, 9, 0, 0, 0, time.UTC),
	}
}

func chatterMessage(id string) Message {
	return Message{ID: id, AuthorID: botID, Text: "good luck everyone!", PostedAt: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)}
}

func TestRunTallies(t *testing.T) {
	// 10 non-result messages and 40 result messages, 5 of which are already
	// stored: scanned 50, parsed 40, inserted 35.
	src := &sliceSource{}
	for i := 0; i < 10; i++ {
		src.msgs = append(src.msgs, chatterMessage(fmt.Sprintf("c%d", i)))
	}
	var dupes []Message
	for i := 0; i < 40; i++ {
		msg := resultMessage(fmt.Sprintf("r%d", i), i%27+2)
		src.msgs = append(src.msgs, msg)
		if i < 5 {
			dupes = append(dupes, msg)
		}
	}

	store := stats.NewMemoryRepository()
	ctx := context.Background()
	for _, msg := range dupes {
		results := wordle.Parse(msg.Text, msg.ID, wordle.ResultDate(msg.Text, msg.PostedAt))
		if len(results) == 0 {
			t.Fatalf("seed message did not parse")
		}
		if _, err := store.Insert(ctx, results); err != nil {
			t.Fatalf("seed insert: %v", err)
		}
	}

	report, err := New(store, botID, 7, nil).Run(ctx, src, 50)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Scanned != 50 || report.Parsed != 40 || report.Inserted != 35 {
		t.Fatalf("unexpected tallies: %+v", report)
	}
	if report.RunID == "" {
		t.Fatalf("expected a run ID")
	}
}

func TestRunHonorsMaxMessages(t *testing.T) {
	src := &sliceSource{}
	for i := 0; i < 30; i++ {
		src.msgs = append(src.msgs, resultMessage(fmt.Sprintf("r%d", i), i+1))
	}

	report, err := New(stats.NewMemoryRepository(), botID, 8, nil).Run(context.Background(), src, 12)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Scanned != 12 {
		t.Fatalf("scanned = %d, want 12", report.Scanned)
	}
}

func TestRunSkipsForeignAuthors(t *testing.T) {
	src := &sliceSource{msgs: []Message{
		{ID: "x1", AuthorID: "someone", Text: "Here are yesterday's results:\n3/6: @alice", PostedAt: time.Now()},
		resultMessage("r1", 2),
	}}

	store := stats.NewMemoryRepository()
	report, err := New(store, botID, 10, nil).Run(context.Background(), src, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Scanned != 2 || report.Parsed != 1 || report.Inserted != 1 {
		t.Fatalf("foreign author must be scanned-not-parsed: %+v", report)
	}
}

func TestRunKeepsPartialProgressOnCancel(t *testing.T) {
	src := &sliceSource{}
	for i := 0; i < 20; i++ {
		src.msgs = append(src.msgs, resultMessage(fmt.Sprintf("r%d", i), i+1))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := stats.NewMemoryRepository()
	report, err := New(store, botID, 5, nil).Run(ctx, src, 0)
	if err == nil {
		t.Fatalf("expected context error")
	}
	if report.Inserted != 0 {
		t.Fatalf("nothing should have run after cancellation: %+v", report)
	}
}
