// 애플리케이션 설정 로딩
//
// 환경변수 (.env 파일이 있으면 먼저 읽는다):
//   - PORT, GIN_MODE, CORS_ALLOWED_ORIGINS
//   - GEMINI_API_KEY: 비어 있으면 질의응답 서비스는 degraded 모드로 동작
//   - GEMINI_MODEL, GEMINI_TEMPERATURE, ASSISTANT_TIMEOUT, ASSISTANT_RATE_PER_MINUTE
//   - CHAT_SESSION_TTL, CHAT_SWEEP_INTERVAL, CHAT_TRANSCRIPT_LIMIT, INCIDENT_DEFAULT_ASSIGNEE
//   - SLACK_BOT_TOKEN, SLACK_CHANNEL_ID
//   - LOG_LEVEL, LOG_FILE

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Assistant AssistantConfig
	Chat      ChatConfig
	Slack     SlackConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AllowedOrigins []string
}

type AssistantConfig struct {
	APIKey        string
	Model         string
	Temperature   float32
	Timeout       time.Duration
	RatePerMinute int
}

// Configured reports whether an API credential is present.
func (c AssistantConfig) Configured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

type ChatConfig struct {
	SessionTTL      time.Duration
	SweepInterval   time.Duration
	TranscriptLimit int
	DefaultAssignee string
}

type SlackConfig struct {
	BotToken  string
	ChannelID string
}

type LogConfig struct {
	Level string
	File  string
}

// Load reads .env (optional) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (Config, error) {
	var errs []error

	cfg := Config{
		Server: ServerConfig{
			Port:           getenv("PORT", "8080"),
			GinMode:        os.Getenv("GIN_MODE"),
			AllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		},
		Assistant: AssistantConfig{
			APIKey:        os.Getenv("GEMINI_API_KEY"),
			Model:         getenv("GEMINI_MODEL", "gemini-2.5-flash"),
			Temperature:   float32(parseFloat("GEMINI_TEMPERATURE", 0.3, &errs)),
			Timeout:       parseDuration("ASSISTANT_TIMEOUT", 30*time.Second, &errs),
			RatePerMinute: parseInt("ASSISTANT_RATE_PER_MINUTE", 0, &errs),
		},
		Chat: ChatConfig{
			SessionTTL:      parseDuration("CHAT_SESSION_TTL", 30*time.Minute, &errs),
			SweepInterval:   parseDuration("CHAT_SWEEP_INTERVAL", time.Minute, &errs),
			TranscriptLimit: parseInt("CHAT_TRANSCRIPT_LIMIT", 200, &errs),
			DefaultAssignee: getenv("INCIDENT_DEFAULT_ASSIGNEE", "Safety Team"),
		},
		Slack: SlackConfig{
			BotToken:  os.Getenv("SLACK_BOT_TOKEN"),
			ChannelID: os.Getenv("SLACK_CHANNEL_ID"),
		},
		Log: LogConfig{
			Level: getenv("LOG_LEVEL", "info"),
			File:  os.Getenv("LOG_FILE"),
		},
	}

	if cfg.Assistant.RatePerMinute < 0 {
		errs = append(errs, fmt.Errorf("ASSISTANT_RATE_PER_MINUTE must be >= 0"))
	}
	if cfg.Chat.TranscriptLimit < 0 {
		errs = append(errs, fmt.Errorf("CHAT_TRANSCRIPT_LIMIT must be >= 0"))
	}
	if cfg.Chat.SweepInterval <= 0 {
		errs = append(errs, fmt.Errorf("CHAT_SWEEP_INTERVAL must be positive"))
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return d
}

func parseInt(key string, fallback int, errs *[]error) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return n
}

func parseFloat(key string, fallback float64, errs *[]error) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return f
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
