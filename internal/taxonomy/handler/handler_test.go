package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"kinship/internal/taxonomy/service"
	"kinship/internal/taxonomy/store"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	svc := service.New(store.NewInMemory(),
		service.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	h := New(svc, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	r := chi.NewRouter()
	h.RegisterPublic(r)
	r.Route("/admin", func(r chi.Router) {
		h.RegisterAdmin(r)
	})
	return r
}

func createEntry(t *testing.T, router http.Handler, entryType, value, parentID string) map[string]any {
	t.Helper()
	payload := map[string]string{"type": entryType, "value": value}
	if parentID != "" {
		payload["parent_id"] = parentID
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/admin/taxonomy", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating %s %q, got %d: %s", entryType, value, rec.Code, rec.Body)
	}
	var resp struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return resp.Data
}

func TestDropdownFlow(t *testing.T) {
	router := newRouter(t)

	deity := createEntry(t, router, "clan_deity", "Murugan", "")
	deityID, _ := deity["id"].(string)
	if deityID == "" {
		t.Fatalf("expected entry id in create response")
	}
	createEntry(t, router, "sub_clan", "Villiyan", deityID)
	createEntry(t, router, "sub_clan", "Kanakkan", deityID)

	req := httptest.NewRequest(http.MethodGet, "/taxonomy/children/"+deityID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing children, got %d", rec.Code)
	}

	var resp struct {
		Data []struct {
			ID    uuid.UUID `json:"id"`
			Value string    `json:"value"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode children response: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("expected 2 children, got %d", len(resp.Data))
	}
	if resp.Data[0].Value != "Kanakkan" || resp.Data[1].Value != "Villiyan" {
		t.Fatalf("expected children ordered by value, got %+v", resp.Data)
	}
}

func TestDuplicateValueConflict(t *testing.T) {
	router := newRouter(t)
	createEntry(t, router, "clan", "Iyer", "")

	body, _ := json.Marshal(map[string]string{"type": "clan", "value": "iyer"})
	req := httptest.NewRequest(http.MethodPost, "/admin/taxonomy", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate value, got %d", rec.Code)
	}
}

func TestUnknownTypeRejected(t *testing.T) {
	router := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/taxonomy/planet", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown type, got %d", rec.Code)
	}
}
