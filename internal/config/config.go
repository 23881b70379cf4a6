package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type AppConfig struct {
	IrisBaseURL string
	IrisWSURL   string

	BotPrefix string

	XUserID    string
	XUserEmail string
	XSessionID string

	RedisURL    string
	DatabaseURL string

	WordleRoom  string
	WordleBotID string

	AdminUsers []string

	LuckMinAttempts  int
	LeaderboardLimit int
	HistoryLimit     int

	BackfillPageSize    int
	BackfillMaxMessages int

	CacheTTLSec int

	EgressMode string
	DryRun     bool
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		LuckMinAttempts:     5,
		LeaderboardLimit:    10,
		HistoryLimit:        7,
		BackfillPageSize:    50,
		BackfillMaxMessages: 10000,
		CacheTTLSec:         600,
		EgressMode:          "auto",
	}

	cfg.IrisBaseURL = strings.TrimSpace(os.Getenv("IRIS_BASE_URL"))
	cfg.IrisWSURL = strings.TrimSpace(os.Getenv("IRIS_WS_URL"))
	cfg.BotPrefix = strings.TrimSpace(os.Getenv("BOT_PREFIX"))

	cfg.XUserID = strings.TrimSpace(os.Getenv("X_USER_ID"))
	cfg.XUserEmail = strings.TrimSpace(os.Getenv("X_USER_EMAIL"))
	cfg.XSessionID = strings.TrimSpace(os.Getenv("X_SESSION_ID"))

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	cfg.WordleRoom = strings.TrimSpace(os.Getenv("WORDLE_ROOM"))
	cfg.WordleBotID = strings.TrimSpace(os.Getenv("WORDLE_BOT_ID"))

	if v := strings.TrimSpace(os.Getenv("ADMIN_USERS")); v != "" {
		parts := strings.Split(v, ",")
		for _, p := range parts {
			s := strings.TrimSpace(p)
			if s != "" {
				cfg.AdminUsers = append(cfg.AdminUsers, s)
			}
		}
	}

	if v := strings.TrimSpace(os.Getenv("LUCK_MIN_ATTEMPTS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LuckMinAttempts = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("LEADERBOARD_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LeaderboardLimit = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("HISTORY_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HistoryLimit = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("BACKFILL_PAGE_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BackfillPageSize = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("BACKFILL_MAX_MESSAGES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BackfillMaxMessages = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CACHE_TTL")); v != "" { // seconds
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheTTLSec = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("EGRESS_MODE")); v != "" {
		cfg.EgressMode = v
	}
	if v := strings.TrimSpace(os.Getenv("DRY_RUN")); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			cfg.DryRun = b
		}
	}

	if cfg.IrisBaseURL == "" {
		return nil, errors.New("IRIS_BASE_URL is required")
	}
	if cfg.IrisWSURL == "" {
		return nil, errors.New("IRIS_WS_URL is required")
	}
	if cfg.BotPrefix == "" {
		return nil, errors.New("BOT_PREFIX is required")
	}
	if cfg.WordleRoom == "" {
		return nil, errors.New("WORDLE_ROOM is required")
	}

	return cfg, nil
}

// IsAdmin reports whether user may run privileged commands.
func (c *AppConfig) IsAdmin(user string) bool {
	user = strings.TrimSpace(user)
	if user == "" {
		return false
	}
	for _, a := range c.AdminUsers {
		if a == user {
			return true
		}
	}
	return false
}
