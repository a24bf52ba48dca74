package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/otsyhq/otsy-backend/internal/middleware"
	"github.com/otsyhq/otsy-backend/internal/model/identity"
	"github.com/otsyhq/otsy-backend/internal/service/conversation"
	"github.com/otsyhq/otsy-backend/pkg/utils"
)

// Handler exposes the conversation service over HTTP: message submission,
// transcript reads, history clearing, and the live event feed.
type Handler struct {
	conv     *conversation.Service
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func New(conv *conversation.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		conv:   conv,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin policy is enforced by the CORS middleware.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/messages", h.handleSubmit)
	r.Get("/chat/history", h.handleHistory)
	r.Delete("/chat/history", h.handleClear)
	r.Get("/chat/ws", h.handleWebsocket)
	r.Get("/chat/stream", h.handleStream)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	var payload struct {
		PersonaID string `json:"personaId"`
		Text      string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.conv.Submit(r.Context(), id, payload.PersonaID, payload.Text)
	if err != nil {
		switch {
		case errors.Is(err, conversation.ErrEmptyMessage):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, conversation.ErrReplyPending):
			utils.RespondError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("submit failed", zap.Error(err))
			utils.RespondError(w, http.StatusInternalServerError, "could not save message")
		}
		return
	}

	utils.RespondJSON(w, http.StatusAccepted, msg)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	msgs, err := h.conv.History(r.Context(), id, r.URL.Query().Get("personaId"))
	if err != nil {
		h.logger.Error("history read failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "could not load history")
		return
	}

	utils.RespondJSON(w, http.StatusOK, msgs)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	id, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	reset, err := h.conv.Clear(r.Context(), id, r.URL.Query().Get("personaId"))
	if err != nil {
		h.logger.Error("clear failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "could not clear history")
		return
	}

	utils.RespondJSON(w, http.StatusOK, reset)
}

// handleWebsocket streams conversation events to the client until it
// disconnects.
func (h *Handler) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	id, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	events, cancel, err := h.conv.Subscribe(r.Context(), id, r.URL.Query().Get("personaId"))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not open event feed")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		cancel()
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	go func() {
		defer cancel()
		defer conn.Close()

		// Reads are discarded; their only job is noticing the close frame.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					cancel()
					return
				}
			}
		}()

		for ev := range events {
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}()
}

// handleStream is the Server-Sent Events fallback for clients without
// websockets.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	id, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	flusher, flushable := w.(http.Flusher)
	if !flushable {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	events, cancel, err := h.conv.Subscribe(r.Context(), id, r.URL.Query().Get("personaId"))
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "could not open event feed")
		return
	}
	defer cancel()

	utils.SetupSSEHeaders(w)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, open := <-events:
			if !open {
				return
			}
			utils.SendSSEEvent(w, flusher, string(ev.Type), ev)
		}
	}
}

func callerIdentity(w http.ResponseWriter, r *http.Request) (identity.Identity, bool) {
	id, ok := middleware.FromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "identity required")
		return identity.Identity{}, false
	}
	return id, true
}
