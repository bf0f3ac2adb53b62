// Gemini 기반 질의응답 클라이언트
//
// 환경변수:
//   - GEMINI_API_KEY: 없으면 호출을 시도하지 않고 "not configured" 안내만 반환
//   - GEMINI_MODEL (default: gemini-2.5-flash), GEMINI_TEMPERATURE (default: 0.3)
//   - ASSISTANT_TIMEOUT: 호출당 제한 시간
//   - ASSISTANT_RATE_PER_MINUTE: 분당 호출 한도 (0 = 무제한)
//
// Ask는 에러를 반환하지 않는다. 모든 실패는 모드별 고정 안내 문구로 바뀐다.

package client

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kube-rca/incident-chat/internal/config"
	"github.com/kube-rca/incident-chat/internal/metrics"
	"github.com/kube-rca/incident-chat/internal/model"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// Degraded-mode advisories.
const (
	GeneralUnconfiguredMessage = "⚠️ AI service is not configured.\n\nYou can continue using menu options below."
	GeneralUnavailableMessage  = "⚠️ AI service is temporarily unavailable.\n\nPlease try again later or use the menu."
	RCAUnconfiguredMessage     = "⚠️ AI RCA service is not available.\n\nPlease submit RCA manually in the application."
	RCAUnavailableMessage      = "⚠️ AI RCA service is temporarily unavailable.\n\nPlease try again later."
)

// contentGenerator is satisfied by *genai.Models.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// AssistantClient 구조체 정의
type AssistantClient struct {
	generator   contentGenerator
	model       string
	temperature float32
	timeout     time.Duration
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// NewAssistantClient builds the Gemini client. Without an API key, or when the SDK client
// cannot be created, the returned client runs in degraded mode and never calls the API.
func NewAssistantClient(ctx context.Context, cfg config.AssistantConfig, logger *slog.Logger) *AssistantClient {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "assistant")

	if !cfg.Configured() {
		logger.Warn("GEMINI_API_KEY not set, assistant runs in degraded mode")
		return newAssistantClient(nil, cfg, logger)
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		logger.Error("failed to create genai client, assistant runs in degraded mode", "error", err)
		return newAssistantClient(nil, cfg, logger)
	}
	return newAssistantClient(c.Models, cfg, logger)
}

func newAssistantClient(generator contentGenerator, cfg config.AssistantConfig, logger *slog.Logger) *AssistantClient {
	c := &AssistantClient{
		generator:   generator,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      logger,
	}
	if c.model == "" {
		c.model = "gemini-2.5-flash"
	}
	if cfg.RatePerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), cfg.RatePerMinute)
	}
	return c
}

// 질의응답 서비스 설정 여부 체크
func (c *AssistantClient) IsConfigured() bool {
	return c.generator != nil
}

// Ask answers a question in the given mode. It never returns an error.
func (c *AssistantClient) Ask(ctx context.Context, question string, mode model.AskMode) (answer string) {
	mode = normalizeMode(mode)

	if c.generator == nil {
		metrics.AssistantRequests.WithLabelValues(string(mode), metrics.OutcomeUnconfigured).Inc()
		return unconfiguredMessage(mode)
	}
	if c.limiter != nil && !c.limiter.Allow() {
		metrics.AssistantRequests.WithLabelValues(string(mode), metrics.OutcomeRateLimited).Inc()
		c.logger.Warn("assistant rate limit exceeded", "mode", mode)
		return unavailableMessage(mode)
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("assistant call panicked", "mode", mode, "panic", r)
			metrics.AssistantRequests.WithLabelValues(string(mode), metrics.OutcomeError).Inc()
			answer = unavailableMessage(mode)
		}
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.generator.GenerateContent(ctx, c.model, genai.Text(BuildPrompt(question, mode)), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	})
	metrics.AssistantDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
	if err != nil {
		c.logger.Error("assistant call failed", "mode", mode, "error", err)
		metrics.AssistantRequests.WithLabelValues(string(mode), metrics.OutcomeError).Inc()
		return unavailableMessage(mode)
	}

	if resp != nil {
		answer = strings.TrimSpace(resp.Text())
	}
	if answer == "" {
		c.logger.Error("assistant returned empty answer", "mode", mode)
		metrics.AssistantRequests.WithLabelValues(string(mode), metrics.OutcomeError).Inc()
		return unavailableMessage(mode)
	}

	metrics.AssistantRequests.WithLabelValues(string(mode), metrics.OutcomeOK).Inc()
	return answer
}

// BuildPrompt constructs the model prompt for a question.
func BuildPrompt(question string, mode model.AskMode) string {
	if normalizeMode(mode) == model.AskModeRootCause {
		return fmt.Sprintf(`You are a healthcare incident RCA assistant.
Provide 3-5 probable root causes in bullet points.

Incident Description:
%s`, question)
	}
	return fmt.Sprintf(`You are an Incident Management assistant.
Explain clearly in simple bullet points.

Question:
%s`, question)
}

func normalizeMode(mode model.AskMode) model.AskMode {
	if mode == model.AskModeRootCause {
		return mode
	}
	return model.AskModeGeneral
}

func unconfiguredMessage(mode model.AskMode) string {
	if mode == model.AskModeRootCause {
		return RCAUnconfiguredMessage
	}
	return GeneralUnconfiguredMessage
}

func unavailableMessage(mode model.AskMode) string {
	if mode == model.AskModeRootCause {
		return RCAUnavailableMessage
	}
	return GeneralUnavailableMessage
}
