// 대화 단계 머신 (Conversation Step Machine)
//
// 처리 흐름:
//  1. Submit: 사용자 메시지를 transcript에 추가하고 한 번만 분류 (ClassifyInput)
//  2. 현재 Step에 따라 응답을 만들고 다음 Step으로 이동
//  3. 응답을 transcript에 추가
//
// 세션 상태는 세션 객체가 단독으로 소유하며 세션 간 공유되는 것은 Chatbot의 불변 의존성뿐이다.

package service

import (
	"context"
	"encoding/hex"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/kube-rca/incident-chat/internal/metrics"
	"github.com/kube-rca/incident-chat/internal/model"
	tmpl "github.com/kube-rca/incident-chat/internal/template"
)

// Assistant - 질의응답 서비스 계약. 실패는 안내 문구로 흡수되어 반환되며 에러를 내지 않는다.
type Assistant interface {
	Ask(ctx context.Context, question string, mode model.AskMode) string
}

// IncidentNotifier - 사건 생성 알림 (best-effort)
type IncidentNotifier interface {
	NotifyIncident(ctx context.Context, rec model.IncidentRecord) error
}

// ChatbotConfig - 세션 공통 설정
type ChatbotConfig struct {
	Assistant       Assistant
	FAQs            *FAQTable
	Notifier        IncidentNotifier
	Logger          *slog.Logger
	DefaultAssignee string
	TranscriptLimit int

	// Now and NewIncidentID are overridable for tests.
	Now           func() time.Time
	NewIncidentID func() string
}

// Chatbot holds the dependencies shared by every session. Apart from the pending
// notification count it is immutable after construction.
type Chatbot struct {
	assistant       Assistant
	faqs            *FAQTable
	notifier        IncidentNotifier
	logger          *slog.Logger
	assignee        string
	transcriptLimit int
	now             func() time.Time
	newID           func() string

	pending sync.WaitGroup
}

func NewChatbot(cfg ChatbotConfig) *Chatbot {
	b := &Chatbot{
		assistant:       cfg.Assistant,
		faqs:            cfg.FAQs,
		notifier:        cfg.Notifier,
		logger:          cfg.Logger,
		assignee:        strings.TrimSpace(cfg.DefaultAssignee),
		transcriptLimit: cfg.TranscriptLimit,
		now:             cfg.Now,
		newID:           cfg.NewIncidentID,
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	b.logger = b.logger.With("component", "chatbot")
	if b.assignee == "" {
		b.assignee = model.DefaultAssignee
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.newID == nil {
		b.newID = NewIncidentID
	}
	return b
}

// WaitNotifications blocks until in-flight incident notifications finish or ctx is done.
func (b *Chatbot) WaitNotifications(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NewIncidentID returns "INC-" followed by 12 upper-case hex characters taken from a random UUID.
func NewIncidentID() string {
	u := uuid.New()
	return "INC-" + strings.ToUpper(hex.EncodeToString(u[:6]))
}

type draftIncident struct {
	Category string
}

// Reply - 메시지 한 건 처리 결과
type Reply struct {
	Step model.Step
	Text string
}

// Session - 대화 세션 하나의 상태
type Session struct {
	bot *Chatbot
	id  string

	mu         sync.Mutex
	step       model.Step
	draft      draftIncident
	incidents  map[string]model.IncidentRecord
	transcript []model.TranscriptEntry

	lastActive atomic.Int64
	closed     context.Context
	close      context.CancelFunc
}

// NewSession starts a session at MAIN_MENU with the menu greeting in the transcript.
func (b *Chatbot) NewSession(id string) *Session {
	closed, cancel := context.WithCancel(context.Background())
	s := &Session{
		bot:       b,
		id:        id,
		step:      model.StepMainMenu,
		incidents: make(map[string]model.IncidentRecord),
		closed:    closed,
		close:     cancel,
	}
	s.appendEntry(model.RoleAssistant, tmpl.MainMenu)
	s.touch()
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) Step() model.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Transcript returns a copy of the transcript in insertion order.
func (s *Session) Transcript() []model.TranscriptEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.TranscriptEntry, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Incident looks up a record by id.
func (s *Session) Incident(id string) (model.IncidentRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(id)
}

// Incidents returns every record ordered by report time.
func (s *Session) Incidents() []model.IncidentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.IncidentRecord, 0, len(s.incidents))
	for _, rec := range s.incidents {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReportedAt.Equal(out[j].ReportedAt) {
			return out[i].IncidentID < out[j].IncidentID
		}
		return out[i].ReportedAt.Before(out[j].ReportedAt)
	})
	return out
}

// LastActive is the time of the most recent message (or creation).
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// Close cancels any in-flight assistant call. The session stays readable.
func (s *Session) Close() {
	s.close()
}

// Submit processes one user message and returns the reply and the next step.
// It never fails; assistant problems surface as advisory text inside the reply.
func (s *Session) Submit(ctx context.Context, text string) Reply {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	defer s.touch()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.closed, cancel)
	defer stop()

	received := s.step
	metrics.ChatMessages.WithLabelValues(string(received)).Inc()

	s.appendEntry(model.RoleUser, text)
	in := ClassifyInput(text)

	var reply string
	switch s.step {
	case model.StepMainMenu:
		reply = s.handleMainMenu(ctx, in)
	case model.StepAwaitingCategory:
		reply = s.handleCategory(in)
	case model.StepAwaitingDescription:
		reply = s.handleDescription(ctx, in)
	case model.StepAwaitingViewID:
		reply = s.handleViewID(in)
	case model.StepAwaitingRCAInput:
		reply = s.handleRCAInput(ctx, in)
	case model.StepFAQMenu:
		reply = s.handleFAQMenu(ctx, in)
	default:
		s.bot.logger.Warn("unknown step, resetting to main menu", "session_id", s.id, "step", s.step)
		s.step = model.StepMainMenu
		reply = tmpl.MainMenu
	}

	s.appendEntry(model.RoleAssistant, reply)
	s.bot.logger.Debug("message processed",
		"session_id", s.id,
		"input_kind", in.Kind.String(),
		"from_step", received,
		"to_step", s.step,
	)
	return Reply{Step: s.step, Text: reply}
}

func (s *Session) handleMainMenu(ctx context.Context, in Input) string {
	if in.Kind == InputText {
		return s.answer(ctx, in.Text)
	}

	switch in.Number {
	case 1:
		s.step = model.StepAwaitingCategory
		return tmpl.CategoryPrompt
	case 2:
		s.step = model.StepAwaitingViewID
		return tmpl.ViewIDPrompt
	case 3:
		s.step = model.StepAwaitingRCAInput
		return tmpl.RCAPrompt
	case 4:
		s.step = model.StepFAQMenu
		return tmpl.FAQList(s.bot.faqs.Prompts())
	default:
		s.step = model.StepMainMenu
		return tmpl.MainMenu
	}
}

// 새 보고를 시작하면 이전 draft는 덮어쓴다.
func (s *Session) handleCategory(in Input) string {
	s.draft = draftIncident{Category: in.Text}
	s.step = model.StepAwaitingDescription
	return tmpl.DescriptionPrompt
}

func (s *Session) handleDescription(ctx context.Context, in Input) string {
	rec := model.IncidentRecord{
		IncidentID:  s.bot.newID(),
		Category:    s.draft.Category,
		Description: in.Text,
		Status:      model.IncidentStatusReported,
		AssignedTo:  s.bot.assignee,
		ReportedAt:  s.bot.now(),
	}
	s.incidents[normalizeIncidentID(rec.IncidentID)] = rec
	s.draft = draftIncident{}
	s.step = model.StepMainMenu

	metrics.IncidentsCreated.Inc()
	s.bot.logger.Info("incident created",
		"session_id", s.id,
		"incident_id", rec.IncidentID,
		"category", rec.Category,
	)
	s.notify(ctx, rec)

	return tmpl.Join(tmpl.IncidentCreated(rec), tmpl.MainMenu)
}

func (s *Session) handleViewID(in Input) string {
	s.step = model.StepMainMenu
	rec, ok := s.lookup(in.Text)
	if !ok {
		return tmpl.Join(tmpl.IncidentMissing, tmpl.MainMenu)
	}
	return tmpl.Join(tmpl.IncidentCard(rec), tmpl.MainMenu)
}

func (s *Session) handleRCAInput(ctx context.Context, in Input) string {
	s.step = model.StepMainMenu
	suggestions := s.bot.assistant.Ask(ctx, in.Text, model.AskModeRootCause)
	return tmpl.Join(tmpl.RCAHeader, suggestions, tmpl.RCASubmitted, tmpl.MainMenu)
}

func (s *Session) handleFAQMenu(ctx context.Context, in Input) string {
	s.step = model.StepMainMenu
	if in.Kind == InputText {
		return s.answer(ctx, in.Text)
	}
	if entry, ok := s.bot.faqs.Lookup(in.Number); ok {
		return tmpl.Join(entry.Answer, tmpl.MainMenu)
	}
	return tmpl.Join(tmpl.FAQList(s.bot.faqs.Prompts()), tmpl.MainMenu)
}

func (s *Session) answer(ctx context.Context, question string) string {
	s.step = model.StepMainMenu
	answer := s.bot.assistant.Ask(ctx, question, model.AskModeGeneral)
	return tmpl.Join(tmpl.AnswerHeader, answer, tmpl.MainMenu)
}

// 알림은 응답을 지연시키지 않도록 별도 goroutine에서 보낸다. 실패는 로그만 남긴다.
// 종료 시 WaitNotifications로 남은 전송을 기다린다.
func (s *Session) notify(ctx context.Context, rec model.IncidentRecord) {
	if s.bot.notifier == nil {
		return
	}
	notifier, logger := s.bot.notifier, s.bot.logger
	ctx = context.WithoutCancel(ctx)
	s.bot.pending.Add(1)
	go func() {
		defer s.bot.pending.Done()
		if err := notifier.NotifyIncident(ctx, rec); err != nil {
			logger.Warn("failed to notify incident", "incident_id", rec.IncidentID, "error", err)
		}
	}()
}

func (s *Session) lookup(id string) (model.IncidentRecord, bool) {
	rec, ok := s.incidents[normalizeIncidentID(id)]
	return rec, ok
}

// ID 조회는 앞뒤 공백과 대소문자를 무시한다.
func normalizeIncidentID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func (s *Session) appendEntry(role model.Role, content string) {
	s.transcript = append(s.transcript, model.TranscriptEntry{Role: role, Content: content})
	if limit := s.bot.transcriptLimit; limit > 0 && len(s.transcript) > limit {
		trimmed := make([]model.TranscriptEntry, limit)
		copy(trimmed, s.transcript[len(s.transcript)-limit:])
		s.transcript = trimmed
	}
}

func (s *Session) touch() {
	s.lastActive.Store(s.bot.now().UnixNano())
}
