package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kube-rca/incident-chat/internal/model"
	"github.com/kube-rca/incident-chat/internal/service"
)

type ChatHandler struct {
	sessions *service.SessionManager
}

func NewChatHandler(sessions *service.SessionManager) *ChatHandler {
	return &ChatHandler{sessions: sessions}
}

// CreateSession godoc
// @Summary Start a chat session
// @Description Creates a session at MAIN_MENU and returns the menu greeting.
// @Tags chat
// @Produce json
// @Success 201 {object} model.ChatReplyResponse
// @Router /api/v1/chat/sessions [post]
func (h *ChatHandler) CreateSession(c *gin.Context) {
	s := h.sessions.Create()
	transcript := s.Transcript()

	reply := ""
	if len(transcript) > 0 {
		reply = transcript[len(transcript)-1].Content
	}
	c.JSON(http.StatusCreated, model.ChatReplyResponse{
		Status:    "success",
		SessionID: s.ID(),
		Step:      s.Step(),
		Reply:     reply,
	})
}

// SendMessage godoc
// @Summary Send a chat message
// @Tags chat
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body model.ChatMessageRequest true "User message"
// @Success 200 {object} model.ChatReplyResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/chat/sessions/{id}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req model.ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	id := c.Param("id")
	reply, err := h.sessions.Submit(c.Request.Context(), id, req.Message)
	if err != nil {
		writeSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.ChatReplyResponse{
		Status:    "success",
		SessionID: id,
		Step:      reply.Step,
		Reply:     reply.Text,
	})
}

// GetSession godoc
// @Summary Get a chat session transcript
// @Tags chat
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} model.ChatSessionResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/chat/sessions/{id} [get]
func (h *ChatHandler) GetSession(c *gin.Context) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		writeSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.ChatSessionResponse{
		Status:     "success",
		SessionID:  s.ID(),
		Step:       s.Step(),
		Transcript: s.Transcript(),
	})
}

// ListIncidents godoc
// @Summary List incidents reported in a session
// @Tags chat
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} model.IncidentListEnvelope
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/chat/sessions/{id}/incidents [get]
func (h *ChatHandler) ListIncidents(c *gin.Context) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		writeSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.IncidentListEnvelope{
		Status: "success",
		Data:   s.Incidents(),
	})
}

// DeleteSession godoc
// @Summary End a chat session
// @Tags chat
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} model.StatusResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/chat/sessions/{id} [delete]
func (h *ChatHandler) DeleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Param("id")); err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.StatusResponse{Status: "success", Message: "session deleted"})
}

func writeSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
	}
}
