package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dhg/hub-backend/internal/logger"
	"github.com/dhg/hub-backend/internal/requestdata"
	"github.com/dhg/hub-backend/internal/sse"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *sse.SSEHub

	mu      sync.RWMutex
	clients map[uuid.UUID]*sse.SSEClient // key: SessionID
}

func NewRealtimeHandler(baseLog *logger.Logger, hub *sse.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		log:     baseLog.With("handler", "RealtimeHandler"),
		hub:     hub,
		clients: make(map[uuid.UUID]*sse.SSEClient),
	}
}

func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil || rd.SessionID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	userID := rd.UserID
	sessionID := rd.SessionID

	h.mu.Lock()
	// One stream per session: a reconnect replaces the previous client.
	if existing, ok := h.clients[sessionID]; ok {
		h.hub.CloseClient(existing)
		delete(h.clients, sessionID)
	}
	client := h.hub.NewSSEClient(userID)
	h.clients[sessionID] = client
	h.mu.Unlock()

	// Every session joins the shared browse channel and its own user channel.
	h.hub.AddChannel(client, sse.ChannelBrowse)
	h.hub.AddChannel(client, userID.String())

	h.log.Debug("SSE stream open", "userID", userID, "sessionID", sessionID)
	h.hub.ServeHTTP(c.Writer, c.Request, client)

	// A reconnect may have already replaced this session's entry; only
	// remove it if it is still ours.
	h.mu.Lock()
	if h.clients[sessionID] == client {
		delete(h.clients, sessionID)
	}
	h.mu.Unlock()
	h.hub.CloseClient(client)
}

func (h *RealtimeHandler) Subscribe(c *gin.Context) {
	client, ok := h.clientForSession(c)
	if !ok {
		return
	}
	var req struct {
		Channel string `json:"channel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Channel == "" {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	h.hub.AddChannel(client, req.Channel)
	RespondOK(c, gin.H{"subscribed": req.Channel})
}

func (h *RealtimeHandler) Unsubscribe(c *gin.Context) {
	client, ok := h.clientForSession(c)
	if !ok {
		return
	}
	var req struct {
		Channel string `json:"channel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Channel == "" {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	h.hub.RemoveChannel(client, req.Channel)
	RespondOK(c, gin.H{"unsubscribed": req.Channel})
}

func (h *RealtimeHandler) clientForSession(c *gin.Context) (*sse.SSEClient, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.SessionID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return nil, false
	}
	h.mu.RLock()
	client, exists := h.clients[rd.SessionID]
	h.mu.RUnlock()
	if !exists {
		RespondError(c, http.StatusConflict, "no_stream", nil)
		return nil, false
	}
	return client, true
}
