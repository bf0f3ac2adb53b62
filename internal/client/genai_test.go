package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/kube-rca/incident-chat/internal/config"
	"github.com/kube-rca/incident-chat/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	text     string
	err      error
	panicVal any
	calls    int
	model    string
	prompt   string
	temp     float32
	deadline bool
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	if cfg != nil && cfg.Temperature != nil {
		f.temp = *cfg.Temperature
	}
	_, f.deadline = ctx.Deadline()
	if f.panicVal != nil {
		panic(f.panicVal)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: f.text}}}},
		},
	}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAssistantConfig() config.AssistantConfig {
	return config.AssistantConfig{APIKey: "key", Model: "gemini-test", Temperature: 0.3, Timeout: time.Second}
}

func TestAskUnconfigured(t *testing.T) {
	c := NewAssistantClient(context.Background(), config.AssistantConfig{}, testLogger())
	assert.False(t, c.IsConfigured())

	assert.Equal(t, GeneralUnconfiguredMessage, c.Ask(context.Background(), "what is a near miss?", model.AskModeGeneral))
	assert.Equal(t, RCAUnconfiguredMessage, c.Ask(context.Background(), "pump stopped", model.AskModeRootCause))
}

func TestAskSuccess(t *testing.T) {
	gen := &fakeGenerator{text: "  • Check power supply\n"}
	c := newAssistantClient(gen, testAssistantConfig(), testLogger())

	got := c.Ask(context.Background(), "Infusion pump stopped", model.AskModeRootCause)

	assert.Equal(t, "• Check power supply", got)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, "gemini-test", gen.model)
	assert.InDelta(t, 0.3, gen.temp, 1e-6)
	assert.True(t, gen.deadline, "expected call to run under a timeout")
	assert.Contains(t, gen.prompt, "3-5 probable root causes")
	assert.Contains(t, gen.prompt, "Infusion pump stopped")
}

func TestAskFailuresDegrade(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
		mode model.AskMode
		want string
	}{
		{"api error general", &fakeGenerator{err: errors.New("quota exceeded")}, model.AskModeGeneral, GeneralUnavailableMessage},
		{"api error rca", &fakeGenerator{err: errors.New("network down")}, model.AskModeRootCause, RCAUnavailableMessage},
		{"empty answer", &fakeGenerator{text: "   "}, model.AskModeGeneral, GeneralUnavailableMessage},
		{"panic", &fakeGenerator{panicVal: "boom"}, model.AskModeRootCause, RCAUnavailableMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newAssistantClient(tt.gen, testAssistantConfig(), testLogger())
			assert.Equal(t, tt.want, c.Ask(context.Background(), "q", tt.mode))
		})
	}
}

func TestAskRateLimited(t *testing.T) {
	gen := &fakeGenerator{text: "answer"}
	cfg := testAssistantConfig()
	cfg.RatePerMinute = 1
	c := newAssistantClient(gen, cfg, testLogger())

	require.Equal(t, "answer", c.Ask(context.Background(), "q", model.AskModeGeneral))
	assert.Equal(t, GeneralUnavailableMessage, c.Ask(context.Background(), "q", model.AskModeGeneral))
	assert.Equal(t, 1, gen.calls)
}

func TestBuildPrompt(t *testing.T) {
	general := BuildPrompt("What is an incident?", model.AskModeGeneral)
	assert.Contains(t, general, "Incident Management assistant")
	assert.Contains(t, general, "simple bullet points")
	assert.Contains(t, general, "What is an incident?")

	rca := BuildPrompt("Patient fell", model.AskModeRootCause)
	assert.Contains(t, rca, "healthcare incident RCA assistant")
	assert.Contains(t, rca, "Patient fell")

	assert.Equal(t, general, BuildPrompt("What is an incident?", model.AskMode("unknown")))
}
