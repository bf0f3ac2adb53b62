package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kube-rca/incident-chat/internal/model"
	"github.com/kube-rca/incident-chat/internal/service"
	tmpl "github.com/kube-rca/incident-chat/internal/template"
)

type echoAssistant struct{}

func (echoAssistant) Ask(_ context.Context, question string, _ model.AskMode) string {
	return "echo: " + question
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	faqs, err := service.DefaultFAQTable()
	require.NoError(t, err)
	bot := service.NewChatbot(service.ChatbotConfig{
		Assistant: echoAssistant{},
		FAQs:      faqs,
		Logger:    logger,
	})
	sessions := service.NewSessionManager(bot, 0)
	return NewRouter(NewChatHandler(sessions), []string{"http://localhost:3000"}, logger)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, router http.Handler) model.ChatReplyResponse {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/v1/chat/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp model.ChatReplyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateSession(t *testing.T) {
	router := newTestRouter(t)

	resp := createSession(t, router)

	assert.Equal(t, "success", resp.Status)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, model.StepMainMenu, resp.Step)
	assert.Equal(t, tmpl.MainMenu, resp.Reply)
}

func TestReportAndListIncidents(t *testing.T) {
	router := newTestRouter(t)
	session := createSession(t, router)
	path := "/api/v1/chat/sessions/" + session.SessionID

	for _, msg := range []string{"1", "Fire", "Smoke in lab 2"} {
		w := doJSON(t, router, http.MethodPost, path+"/messages", model.ChatMessageRequest{Message: msg})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := doJSON(t, router, http.MethodGet, path+"/incidents", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list model.IncidentListEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Fire", list.Data[0].Category)
	assert.Equal(t, "Smoke in lab 2", list.Data[0].Description)
	assert.Equal(t, model.IncidentStatusReported, list.Data[0].Status)

	w = doJSON(t, router, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail model.ChatSessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, model.StepMainMenu, detail.Step)
	assert.Len(t, detail.Transcript, 7)
}

func TestSendMessageFreeText(t *testing.T) {
	router := newTestRouter(t)
	session := createSession(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/v1/chat/sessions/"+session.SessionID+"/messages",
		model.ChatMessageRequest{Message: "where is the first aid kit?"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.ChatReplyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Reply, "echo: where is the first aid kit?")
	assert.Equal(t, model.StepMainMenu, resp.Step)
}

func TestSendMessageErrors(t *testing.T) {
	router := newTestRouter(t)
	session := createSession(t, router)

	tests := []struct {
		name string
		path string
		body any
		want int
	}{
		{"missing body", "/api/v1/chat/sessions/" + session.SessionID + "/messages", nil, http.StatusBadRequest},
		{"empty message", "/api/v1/chat/sessions/" + session.SessionID + "/messages", map[string]string{"message": ""}, http.StatusBadRequest},
		{"unknown session", "/api/v1/chat/sessions/missing/messages", model.ChatMessageRequest{Message: "1"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code)

			var resp model.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestSendMessageBlankIsAnswered(t *testing.T) {
	router := newTestRouter(t)
	session := createSession(t, router)

	w := doJSON(t, router, http.MethodPost, "/api/v1/chat/sessions/"+session.SessionID+"/messages",
		model.ChatMessageRequest{Message: "   "})
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.ChatReplyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.StepMainMenu, resp.Step)
	assert.Contains(t, resp.Reply, "echo:    ")
}

func TestDeleteSession(t *testing.T) {
	router := newTestRouter(t)
	session := createSession(t, router)
	path := "/api/v1/chat/sessions/" + session.SessionID

	w := doJSON(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/openapi.json", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/v1/chat/sessions")
}

func TestCORSMiddleware(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/chat/sessions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
