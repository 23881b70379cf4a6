package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/wordle-stats-bot/internal/adapter/statspresenter"
	"github.com/kapu/wordle-stats-bot/internal/backfill"
	"github.com/kapu/wordle-stats-bot/internal/chart"
	appcfg "github.com/kapu/wordle-stats-bot/internal/config"
	"github.com/kapu/wordle-stats-bot/internal/domain"
	"github.com/kapu/wordle-stats-bot/internal/ingest"
	"github.com/kapu/wordle-stats-bot/internal/irisfast"
	"github.com/kapu/wordle-stats-bot/internal/msgcat"
	"github.com/kapu/wordle-stats-bot/internal/obslog"
	stats "github.com/kapu/wordle-stats-bot/internal/service/stats"
	"github.com/kapu/wordle-stats-bot/internal/statsbuilder"
	"github.com/kapu/wordle-stats-bot/internal/statscache"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()

	headers := func() map[string]string {
		h := map[string]string{}
		if cfg.XUserID != "" {
			h["X-User-Id"] = cfg.XUserID
		}
		if cfg.XUserEmail != "" {
			h["X-User-Email"] = cfg.XUserEmail
		}
		if cfg.XSessionID != "" {
			h["X-Session-Id"] = cfg.XSessionID
		}
		return h
	}

	client := irisfast.NewClient(cfg.IrisBaseURL, irisfast.WithHeaderProvider(headers))

	ws := irisfast.NewWebSocket(cfg.IrisWSURL, 5, time.Second)
	ws.SetHeaderProvider(headers)
	ws.OnStateChange(func(state irisfast.WebSocketState) {
		logger.Info("ws_state", zap.Stringer("state", state))
	})

	deps, err := statsbuilder.New(cfg, logger)
	if err != nil {
		log.Fatalf("stats init error: %v", err)
	}
	defer deps.Close()

	catalog, err := msgcat.New(strings.TrimSpace(os.Getenv("MSG_TEMPLATE_DIR")))
	if err != nil {
		log.Fatalf("message catalog error: %v", err)
	}

	egress := irisfast.NewEgress(cfg.EgressMode, cfg.DryRun, client, ws, logger)
	presenter := statspresenter.NewPresenter(
		func(room, message string) error { return egress.SendText(context.Background(), room, message) },
		func(room, imageBase64 string) error { return egress.SendImage(context.Background(), room, imageBase64) },
	)
	formatter := statspresenter.NewFormatter(prefixProvider{prefix: cfg.BotPrefix})

	var invalidator ingest.Invalidator
	if deps.Cache != nil {
		invalidator = deps.Cache
	}
	liveIngest := ingest.NewHandler(deps.Repo, invalidator, cfg.WordleRoom, cfg.WordleBotID, logger)

	coordinator := backfill.New(deps.Repo, cfg.WordleBotID, cfg.BackfillPageSize, logger)

	bot := &wordleBot{
		cfg:         cfg,
		client:      client,
		service:     deps.Service,
		cache:       deps.Cache,
		renderer:    deps.Renderer,
		presenter:   presenter,
		formatter:   formatter,
		catalog:     catalog,
		coordinator: coordinator,
		logger:      logger,
	}

	ws.OnMessage(func(msg *irisfast.Message) {
		if msg == nil || msg.Msg == "" {
			return
		}
		// Every room message goes through ingest first; results posted by the
		// game bot never carry the command prefix.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_, _ = liveIngest.Handle(ctx, msg)
		}()

		if cfg.WordleRoom != "" && msg.Room != cfg.WordleRoom {
			return
		}
		if !strings.HasPrefix(strings.TrimSpace(msg.Msg), cfg.BotPrefix) {
			return
		}
		// Avoid blocking the WS loop
		go bot.handleCommand(msg)
	})

	cctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ws.Connect(cctx); err != nil {
		cancel()
		log.Fatalf("ws connect error: %v", err)
	}
	cancel()
	logger.Info("bot_started", zap.String("room", cfg.WordleRoom), zap.String("prefix", cfg.BotPrefix))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	_ = ws.Close(context.Background())
}

type prefixProvider struct{ prefix string }

func (p prefixProvider) Prefix() string { return p.prefix }

type wordleBot struct {
	cfg         *appcfg.AppConfig
	client      *irisfast.Client
	service     *stats.Service
	cache       *statscache.Cache
	renderer    chart.BarRenderer
	presenter   *statspresenter.Presenter
	formatter   *statspresenter.Formatter
	catalog     *msgcat.Catalog
	coordinator *backfill.Coordinator
	logger      *zap.Logger

	backfillRunning atomic.Bool
}

func (b *wordleBot) handleCommand(msg *irisfast.Message) {
	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(msg.Msg), b.cfg.BotPrefix))
	if raw == "" {
		return
	}
	parts := strings.Fields(raw)
	if strings.ToLower(parts[0]) != "wordle" {
		return
	}
	args := parts[1:]
	cmd := "help"
	if len(args) > 0 {
		cmd = strings.ToLower(args[0])
		args = args[1:]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd {
	case "help":
		_ = b.presenter.Text(msg.Room, b.formatter.Help())
	case "ping":
		b.sendCatalog(msg.Room, "common.pong", nil)
	case "leaderboard":
		limit := optionalLimit(args, b.cfg.LeaderboardLimit)
		b.sendCached(ctx, msg.Room, fmt.Sprintf("text:leaderboard:%d", limit), func() (string, error) {
			entries, err := b.service.Leaderboard(ctx, limit)
			if err != nil {
				return "", err
			}
			return b.formatter.Leaderboard(entries), nil
		})
	case "average":
		b.sendCached(ctx, msg.Room, "text:average", func() (string, error) {
			entries, err := b.service.Averages(ctx)
			if err != nil {
				return "", err
			}
			return b.formatter.Averages(entries), nil
		})
	case "streak":
		b.sendCached(ctx, msg.Room, "text:streak", func() (string, error) {
			info, err := b.service.Streaks(ctx)
			if err != nil {
				return "", err
			}
			if info.LastPlayed.IsZero() {
				return "", nil
			}
			return b.formatter.Streak(info), nil
		})
	case "luck":
		limit := optionalLimit(args, b.cfg.LeaderboardLimit)
		b.sendCached(ctx, msg.Room, fmt.Sprintf("text:luck:%d", limit), func() (string, error) {
			entries, err := b.service.Luck(ctx, limit)
			if err != nil {
				return "", err
			}
			return b.formatter.Luck(entries, b.cfg.LuckMinAttempts), nil
		})
	case "participation":
		b.sendCached(ctx, msg.Room, "text:participation", func() (string, error) {
			entries, err := b.service.Participation(ctx)
			if err != nil {
				return "", err
			}
			return b.formatter.Participation(entries), nil
		})
	case "whowins":
		b.sendCached(ctx, msg.Room, "text:whowins", func() (string, error) {
			winners, err := b.service.WeekdayWinners(ctx)
			if err != nil {
				return "", err
			}
			return b.formatter.WhoWins(winners), nil
		})
	case "players":
		b.sendCached(ctx, msg.Room, "text:players", func() (string, error) {
			players, err := b.service.Players(ctx)
			if err != nil {
				return "", err
			}
			return b.formatter.Players(players), nil
		})
	case "dbstats":
		b.sendCached(ctx, msg.Room, "text:dbstats", func() (string, error) {
			overview, err := b.service.Overview(ctx)
			if err != nil {
				return "", err
			}
			if overview.TotalResults == 0 {
				return "", nil
			}
			return b.formatter.Overview(overview), nil
		})
	case "stats":
		b.handleStats(ctx, msg, args)
	case "h2h":
		b.handleHeadToHead(ctx, msg.Room, args)
	case "history":
		b.handleHistory(ctx, msg.Room, args)
	case "chart":
		b.handleChart(ctx, msg.Room, args)
	case "backfill":
		b.handleBackfill(msg, args)
	default:
		b.sendCatalog(msg.Room, "common.unknown_command", map[string]any{"Prefix": b.cfg.BotPrefix})
	}
}

func (b *wordleBot) handleStats(ctx context.Context, msg *irisfast.Message, args []string) {
	room := msg.Room
	var player string
	switch {
	case len(args) > 0:
		player = strings.TrimPrefix(args[0], "@")
	case msg.Sender != nil:
		// No player named: show the sender their own numbers.
		player = strings.TrimSpace(*msg.Sender)
	}
	if player == "" {
		_ = b.presenter.Text(room, "Usage: "+b.cfg.BotPrefix+"wordle stats <player>")
		return
	}
	profile, err := b.service.PlayerStats(ctx, player)
	if err != nil {
		b.sendError(room, err)
		return
	}
	if profile == nil {
		b.sendCatalog(room, "player.not_found", map[string]any{"Player": player})
		return
	}
	_ = b.presenter.Text(room, b.formatter.PlayerStats(profile))
}

func (b *wordleBot) handleHeadToHead(ctx context.Context, room string, args []string) {
	if len(args) < 2 {
		_ = b.presenter.Text(room, "Usage: "+b.cfg.BotPrefix+"wordle h2h <player> <player>")
		return
	}
	h, err := b.service.HeadToHead(ctx, strings.TrimPrefix(args[0], "@"), strings.TrimPrefix(args[1], "@"))
	if err != nil {
		b.sendError(room, err)
		return
	}
	_ = b.presenter.Text(room, b.formatter.HeadToHead(h))
}

func (b *wordleBot) handleHistory(ctx context.Context, room string, args []string) {
	days := b.cfg.HistoryLimit
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			days = n
		}
	}
	summaries, err := b.service.History(ctx, days)
	if err != nil {
		b.sendError(room, err)
		return
	}
	if len(summaries) == 0 {
		b.sendCatalog(room, "common.no_data", nil)
		return
	}
	_ = b.presenter.Text(room, b.formatter.History(summaries))
}

func (b *wordleBot) handleChart(ctx context.Context, room string, args []string) {
	if len(args) < 1 {
		_ = b.presenter.Text(room, "Usage: "+b.cfg.BotPrefix+"wordle chart <leaderboard|average|luck|participation|distribution|h2h>")
		return
	}
	kind := strings.ToLower(args[0])
	if kind == "dist" {
		kind = "distribution"
	}
	cacheKey := "chart:" + kind
	if (kind == "distribution" || kind == "h2h") && len(args) > 1 {
		for _, a := range args[1:] {
			cacheKey += ":" + strings.ToLower(strings.TrimPrefix(a, "@"))
		}
	}

	if b.cache != nil {
		if png, ok, err := b.cache.GetImage(ctx, cacheKey); err == nil && ok {
			_ = b.presenter.Chart(room, "", png)
			return
		}
	}

	bars, opts, err := b.chartData(ctx, kind, args[1:])
	if err != nil {
		b.sendError(room, err)
		return
	}
	if bars == nil {
		b.sendCatalog(room, "chart.unknown", map[string]any{"Kind": kind})
		return
	}
	if len(bars) == 0 {
		b.sendCatalog(room, "common.no_data", nil)
		return
	}

	png, err := b.renderer.RenderPNG(ctx, bars, opts)
	if err != nil {
		b.logger.Error("chart_render_failed", zap.String("kind", kind), zap.Error(err))
		b.sendCatalog(room, "chart.failed", nil)
		return
	}
	if b.cache != nil {
		_ = b.cache.SetImage(ctx, cacheKey, png)
	}
	_ = b.presenter.Chart(room, "", png)
}

// chartData maps a chart kind onto service aggregates. A nil bar slice with a
// nil error means the kind is unknown.
func (b *wordleBot) chartData(ctx context.Context, kind string, args []string) ([]chart.Bar, chart.RenderOptions, error) {
	switch kind {
	case "leaderboard":
		entries, err := b.service.Leaderboard(ctx, b.cfg.LeaderboardLimit)
		if err != nil {
			return nil, chart.RenderOptions{}, err
		}
		bars := make([]chart.Bar, 0, len(entries))
		for _, e := range entries {
			bars = append(bars, chart.Bar{Label: e.Player, Value: float64(e.Wins)})
		}
		return bars, chart.RenderOptions{Title: "Wordle wins"}, nil
	case "average":
		entries, err := b.service.Averages(ctx)
		if err != nil {
			return nil, chart.RenderOptions{}, err
		}
		bars := make([]chart.Bar, 0, len(entries))
		for _, e := range entries {
			if e.Games == 0 {
				continue
			}
			bars = append(bars, chart.Bar{Label: e.Player, Value: e.Average})
		}
		opts := chart.RenderOptions{
			Title:       "Average guesses (lower is better)",
			ValueFormat: func(v float64) string { return fmt.Sprintf("%.2f", v) },
		}
		return bars, opts, nil
	case "luck":
		entries, err := b.service.Luck(ctx, b.cfg.LeaderboardLimit)
		if err != nil {
			return nil, chart.RenderOptions{}, err
		}
		bars := make([]chart.Bar, 0, len(entries))
		for _, e := range entries {
			bars = append(bars, chart.Bar{
				Label:      e.Player,
				Value:      e.Rate * 100,
				Annotation: fmt.Sprintf("%d/%d", e.Lucky, e.Attempts),
			})
		}
		return bars, chart.RenderOptions{Title: "Luck: 1-2 guess finishes"}, nil
	case "participation":
		entries, err := b.service.Participation(ctx)
		if err != nil {
			return nil, chart.RenderOptions{}, err
		}
		bars := make([]chart.Bar, 0, len(entries))
		for _, e := range entries {
			bars = append(bars, chart.Bar{
				Label:      e.Player,
				Value:      e.Rate * 100,
				Annotation: fmt.Sprintf("%d/%d", e.DaysPlayed, e.TotalDays),
			})
		}
		return bars, chart.RenderOptions{Title: "Participation"}, nil
	case "distribution":
		if len(args) < 1 {
			return nil, chart.RenderOptions{}, fmt.Errorf("distribution chart needs a player name")
		}
		player := strings.TrimPrefix(args[0], "@")
		profile, err := b.service.PlayerStats(ctx, player)
		if err != nil {
			return nil, chart.RenderOptions{}, err
		}
		if profile == nil {
			return []chart.Bar{}, chart.RenderOptions{}, nil
		}
		bars := make([]chart.Bar, 0, domain.FailScore)
		for score := 1; score <= domain.FailScore; score++ {
			label := fmt.Sprintf("%d/6", score)
			if score == domain.FailScore {
				label = "X/6"
			}
			bars = append(bars, chart.Bar{Label: label, Value: float64(profile.Distribution[score])})
		}
		return bars, chart.RenderOptions{Title: "Guess distribution: " + profile.Player}, nil
	case "h2h":
		if len(args) < 2 {
			return nil, chart.RenderOptions{}, fmt.Errorf("h2h chart needs two player names")
		}
		h, err := b.service.HeadToHead(ctx, strings.TrimPrefix(args[0], "@"), strings.TrimPrefix(args[1], "@"))
		if err != nil {
			return nil, chart.RenderOptions{}, err
		}
		if h.WinsA+h.WinsB+h.Ties == 0 {
			return []chart.Bar{}, chart.RenderOptions{}, nil
		}
		bars := []chart.Bar{
			{Label: h.PlayerA, Value: float64(h.WinsA)},
			{Label: h.PlayerB, Value: float64(h.WinsB)},
			{Label: "Ties", Value: float64(h.Ties)},
		}
		return bars, chart.RenderOptions{Title: h.PlayerA + " vs " + h.PlayerB}, nil
	default:
		return nil, chart.RenderOptions{}, nil
	}
}

func (b *wordleBot) handleBackfill(msg *irisfast.Message, args []string) {
	if !b.cfg.IsAdmin(userIDFromMessage(msg)) {
		b.sendCatalog(msg.Room, "common.not_admin", nil)
		return
	}
	if !b.backfillRunning.CompareAndSwap(false, true) {
		b.sendCatalog(msg.Room, "backfill.busy", nil)
		return
	}

	maxMessages := b.cfg.BackfillMaxMessages
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			maxMessages = n
		}
	}

	room := msg.Room
	b.sendCatalog(room, "backfill.started", nil)
	go func() {
		defer b.backfillRunning.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		source := backfill.NewIrisSource(b.client, b.cfg.WordleRoom)
		report, err := b.coordinator.Run(ctx, source, maxMessages)
		if err != nil {
			b.sendCatalog(room, "backfill.failed", map[string]any{"Error": err.Error()})
			return
		}
		if report.Records > 0 && b.cache != nil {
			_ = b.cache.Invalidate(ctx)
		}
		b.sendCatalog(room, "backfill.done", map[string]any{
			"RunID":    report.RunID,
			"Scanned":  report.Scanned,
			"Parsed":   report.Parsed,
			"Inserted": report.Inserted,
			"Records":  report.Records,
		})
	}()
}

// sendCached answers from the Redis cache when possible, computing and
// storing the block otherwise. An empty block falls back to the no-data
// message.
func (b *wordleBot) sendCached(ctx context.Context, room, key string, compute func() (string, error)) {
	if b.cache != nil {
		if text, ok, err := b.cache.GetText(ctx, key); err == nil && ok {
			_ = b.presenter.Text(room, text)
			return
		}
	}
	text, err := compute()
	if err != nil {
		b.sendError(room, err)
		return
	}
	if strings.TrimSpace(text) == "" {
		b.sendCatalog(room, "common.no_data", nil)
		return
	}
	if b.cache != nil {
		_ = b.cache.SetText(ctx, key, text)
	}
	_ = b.presenter.Text(room, text)
}

func (b *wordleBot) sendError(room string, err error) {
	b.logger.Error("command_failed", zap.Error(err))
	b.sendCatalog(room, "common.storage_error", nil)
}

func (b *wordleBot) sendCatalog(room, key string, data map[string]any) {
	text, err := b.catalog.Render(key, data)
	if err != nil {
		b.logger.Warn("msgcat_render_failed", zap.String("key", key), zap.Error(err))
		return
	}
	_ = b.presenter.Text(room, text)
}

// optionalLimit reads a positive row limit from the first argument, falling
// back to the configured default.
func optionalLimit(args []string, def int) int {
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func userIDFromMessage(msg *irisfast.Message) string {
	if msg.JSON != nil && msg.JSON.UserID != "" {
		return msg.JSON.UserID
	}
	if msg.Sender != nil {
		return strings.TrimSpace(*msg.Sender)
	}
	return ""
}
