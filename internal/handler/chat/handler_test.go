package chat

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/otsyhq/otsy-backend/internal/middleware"
	chatModel "github.com/otsyhq/otsy-backend/internal/model/chat"
	"github.com/otsyhq/otsy-backend/internal/model/identity"
	"github.com/otsyhq/otsy-backend/internal/model/persona"
	"github.com/otsyhq/otsy-backend/internal/service/conversation"
	"github.com/otsyhq/otsy-backend/internal/service/session"
	"github.com/otsyhq/otsy-backend/internal/store"
	"github.com/otsyhq/otsy-backend/internal/store/memory"
)

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()
	personas := persona.NewMemoryStore(persona.Seed())
	sessions := session.NewStore(store.Dual{Local: memory.New()}, personas, nil)
	conv := conversation.NewService(sessions, personas, nil,
		conversation.Config{TypingDelay: 200 * time.Millisecond}, nil)
	t.Cleanup(conv.Close)

	r := chi.NewRouter()
	New(conv, nil).RegisterRoutes(r)
	return r
}

func asGuest(req *http.Request) *http.Request {
	ctx := middleware.WithIdentity(req.Context(), identity.Anonymous("device-1"))
	return req.WithContext(ctx)
}

func TestSubmitAccepted(t *testing.T) {
	r := setupRouter(t)
	payload, _ := json.Marshal(map[string]string{"personaId": "otsy", "text": "hello"})

	req := asGuest(httptest.NewRequest(http.MethodPost, "/chat/messages", bytes.NewReader(payload)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", resp.Code, resp.Body.String())
	}

	var msg chatModel.Message
	if err := json.Unmarshal(resp.Body.Bytes(), &msg); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if msg.Sender != chatModel.SenderUser || msg.Text != "hello" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestSubmitEmptyTextRejected(t *testing.T) {
	r := setupRouter(t)
	payload := []byte(`{"personaId":"otsy","text":"   "}`)

	req := asGuest(httptest.NewRequest(http.MethodPost, "/chat/messages", bytes.NewReader(payload)))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSubmitWhileTypingConflicts(t *testing.T) {
	r := setupRouter(t)
	send := func() *httptest.ResponseRecorder {
		payload := []byte(`{"personaId":"otsy","text":"hello"}`)
		req := asGuest(httptest.NewRequest(http.MethodPost, "/chat/messages", bytes.NewReader(payload)))
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		return resp
	}

	if resp := send(); resp.Code != http.StatusAccepted {
		t.Fatalf("first submit: expected 202, got %d", resp.Code)
	}
	if resp := send(); resp.Code != http.StatusConflict {
		t.Fatalf("second submit: expected 409, got %d", resp.Code)
	}
}

func TestSubmitWithoutIdentityUnauthorized(t *testing.T) {
	r := setupRouter(t)
	payload := []byte(`{"personaId":"otsy","text":"hello"}`)

	req := httptest.NewRequest(http.MethodPost, "/chat/messages", bytes.NewReader(payload))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestHistorySeedsGreeting(t *testing.T) {
	r := setupRouter(t)

	req := asGuest(httptest.NewRequest(http.MethodGet, "/chat/history?personaId=otsy", nil))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var msgs []chatModel.Message
	if err := json.Unmarshal(resp.Body.Bytes(), &msgs); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Sender != chatModel.SenderBot {
		t.Fatalf("expected single bot greeting, got %+v", msgs)
	}
}

func TestHistoryUnknownPersonaFallsBack(t *testing.T) {
	r := setupRouter(t)

	req := asGuest(httptest.NewRequest(http.MethodGet, "/chat/history?personaId=nope", nil))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var msgs []chatModel.Message
	if err := json.Unmarshal(resp.Body.Bytes(), &msgs); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(msgs) != 1 || msgs[0].PersonaID != persona.GeneralID {
		t.Fatalf("expected general persona session, got %+v", msgs)
	}
}

func TestClearReturnsResetMessage(t *testing.T) {
	r := setupRouter(t)

	req := asGuest(httptest.NewRequest(http.MethodDelete, "/chat/history?personaId=otsy", nil))
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var msg chatModel.Message
	if err := json.Unmarshal(resp.Body.Bytes(), &msg); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if msg.Sender != chatModel.SenderBot || msg.Text == "" {
		t.Fatalf("unexpected reset message: %+v", msg)
	}
}
