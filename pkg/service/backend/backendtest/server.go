// Package backendtest provides an in-memory triage API for tests.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/incidex/pkg/domain/model"
	"github.com/secmon-lab/incidex/pkg/domain/types"
	"github.com/secmon-lab/incidex/pkg/service/backend"
)

// Server is a fake triage API. Responses use the `{data: ...}` envelope and
// new incidents are labeled with Severity and Category.
type Server struct {
	*httptest.Server

	// Labels assigned to created incidents
	Severity string
	Category string

	mu        sync.Mutex
	incidents []*model.Incident
	nextID    int
	failWith  int
	omitID    bool
	requests  []string
	reqIDs    []string
}

// New starts a fake seeded with incidents. It is closed when the test ends.
func New(t testing.TB, incidents ...*model.Incident) *Server {
	t.Helper()

	s := &Server{
		Severity: model.SeverityHigh,
		Category: "database",
		nextID:   len(incidents) + 1,
	}
	for _, x := range incidents {
		s.incidents = append(s.incidents, x.Clone())
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "database": "connected"})
	})
	r.Get("/incidents", s.list)
	r.Post("/incidents", s.create)
	r.Get("/incidents/{id}", s.get)
	r.Put("/incidents/{id}", s.update)
	r.Delete("/incidents/{id}", s.remove)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Client returns a backend client for the fake
func (s *Server) Client(t testing.TB) *backend.Client {
	t.Helper()
	c, err := backend.New(s.URL, backend.WithHTTPClient(s.Server.Client()))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

// FailWith makes every following request fail with status. Zero restores
// normal behavior.
func (s *Server) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = status
}

// OmitCreatedID leaves the ID out of following create responses
func (s *Server) OmitCreatedID(omit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.omitID = omit
}

// Incidents returns a copy of the stored incidents
func (s *Server) Incidents() []*model.Incident {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*model.Incident, len(s.incidents))
	for i, x := range s.incidents {
		result[i] = x.Clone()
	}
	return result
}

// Requests returns "METHOD /path" for every request received
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.requests...)
}

// RequestIDs returns the X-Request-ID header of every request received
func (s *Server) RequestIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.reqIDs...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.reqIDs = append(s.reqIDs, r.Header.Get("X-Request-ID"))
		status := s.failWith
		s.mu.Unlock()

		if status != 0 {
			writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func envelope(v any) map[string]any {
	return map[string]any{"data": v}
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Incident not found"})
}

// idParam decodes the {id} segment; chi routes on the escaped path
func idParam(r *http.Request) string {
	id := chi.URLParam(r, "id")
	if v, err := url.PathUnescape(id); err == nil {
		return v
	}
	return id
}

func (s *Server) find(id string) (int, *model.Incident) {
	for i, x := range s.incidents {
		if x.ID.String() == id {
			return i, x
		}
	}
	return -1, nil
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope(s.Incidents()))
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, x := s.find(idParam(r))
	if x == nil {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, envelope(x))
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var draft model.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed JSON"})
		return
	}
	if draft.Title == "" || draft.Description == "" || draft.AffectedService == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "title, description and affected_service are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC().Format(time.RFC3339)
	x := &model.Incident{
		ID:              types.IncidentID(strconv.Itoa(s.nextID)),
		Title:           draft.Title,
		Description:     draft.Description,
		AffectedService: draft.AffectedService,
		AISeverity:      s.Severity,
		AICategory:      s.Category,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.nextID++
	s.incidents = append(s.incidents, x)
	if s.omitID {
		resp := x.Clone()
		resp.ID = ""
		writeJSON(w, http.StatusCreated, envelope(resp))
		return
	}
	writeJSON(w, http.StatusCreated, envelope(x))
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	var patch model.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed JSON"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i, x := s.find(idParam(r))
	if x == nil {
		notFound(w)
		return
	}
	updated := patch.Apply(x)
	updated.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	s.incidents[i] = updated
	writeJSON(w, http.StatusOK, envelope(updated))
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, x := s.find(idParam(r))
	if x == nil {
		notFound(w)
		return
	}
	s.incidents = append(s.incidents[:i], s.incidents[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}
