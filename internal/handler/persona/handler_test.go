package persona

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	personaModel "github.com/otsyhq/otsy-backend/internal/model/persona"
)

func TestListPersonas(t *testing.T) {
	r := chi.NewRouter()
	New(personaModel.NewMemoryStore(personaModel.Seed())).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, "/personas", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var personas []personaModel.Persona
	if err := json.Unmarshal(resp.Body.Bytes(), &personas); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(personas) != 3 {
		t.Fatalf("expected 3 personas, got %d", len(personas))
	}
	for _, p := range personas {
		if p.ID == "" || p.Name == "" {
			t.Fatalf("persona missing display fields: %+v", p)
		}
	}
}
