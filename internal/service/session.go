package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kube-rca/incident-chat/internal/metrics"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionManager - 세션 ID와 세션 객체를 매핑하고 유휴 세션을 정리한다.
type SessionManager struct {
	bot    *Chatbot
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger

	// sessions: session_id -> *Session
	sessions sync.Map
}

// NewSessionManager creates a manager; ttl <= 0 disables idle eviction.
func NewSessionManager(bot *Chatbot, ttl time.Duration) *SessionManager {
	return &SessionManager{
		bot:    bot,
		ttl:    ttl,
		now:    bot.now,
		logger: bot.logger.With("component", "sessions"),
	}
}

// Create starts a new session with a random id.
func (m *SessionManager) Create() *Session {
	s := m.bot.NewSession(uuid.NewString())
	m.sessions.Store(s.ID(), s)
	metrics.ActiveSessions.Inc()
	m.logger.Info("session created", "session_id", s.ID())
	return s
}

func (m *SessionManager) Get(id string) (*Session, error) {
	val, ok := m.sessions.Load(id)
	if !ok {
		return nil, fmt.Errorf("%w: id=%s", ErrSessionNotFound, id)
	}
	return val.(*Session), nil
}

// Submit routes one message to its session (submitMessage). The only error is an unknown session;
// every text, blank included, gets a reply.
func (m *SessionManager) Submit(ctx context.Context, id, text string) (Reply, error) {
	s, err := m.Get(id)
	if err != nil {
		return Reply{}, err
	}
	return s.Submit(ctx, text), nil
}

// Delete ends a session and cancels any in-flight assistant call.
func (m *SessionManager) Delete(id string) error {
	val, ok := m.sessions.LoadAndDelete(id)
	if !ok {
		return fmt.Errorf("%w: id=%s", ErrSessionNotFound, id)
	}
	val.(*Session).Close()
	metrics.ActiveSessions.Dec()
	m.logger.Info("session deleted", "session_id", id)
	return nil
}

func (m *SessionManager) Len() int {
	n := 0
	m.sessions.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Sweep evicts sessions idle for longer than the TTL and returns how many were removed.
func (m *SessionManager) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.ttl)
	evicted := 0
	m.sessions.Range(func(key, val any) bool {
		s := val.(*Session)
		if s.LastActive().Before(cutoff) {
			if _, ok := m.sessions.LoadAndDelete(key); ok {
				s.Close()
				metrics.ActiveSessions.Dec()
				evicted++
			}
		}
		return true
	})
	if evicted > 0 {
		m.logger.Info("evicted idle sessions", "count", evicted, "ttl", m.ttl)
	}
	return evicted
}

// Run sweeps on every interval tick until ctx is cancelled.
func (m *SessionManager) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-ctx.Done():
			return nil
		}
	}
}
