package backend_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/incidex/pkg/domain/model"
	"github.com/secmon-lab/incidex/pkg/domain/types"
	"github.com/secmon-lab/incidex/pkg/service/backend"
)

const incidentJSON = `{
	"id": 1,
	"title": "Database connection timeout",
	"description": "Users are experiencing slow response times",
	"affected_service": "user-dashboard",
	"ai_severity": "High",
	"ai_category": "database",
	"created_at": "2024-01-15T10:30:00Z",
	"updated_at": "2024-01-15T10:30:00Z"
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *backend.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := backend.New(srv.URL + "/api/v1")
	gt.NoError(t, err).Required()
	return client
}

func TestNew(t *testing.T) {
	t.Run("Default URL", func(t *testing.T) {
		client, err := backend.New("")
		gt.NoError(t, err).Required()
		gt.Equal(t, backend.DefaultBaseURL, client.BaseURL())
	})

	t.Run("Trailing slash is trimmed", func(t *testing.T) {
		client, err := backend.New("http://example.com/api/")
		gt.NoError(t, err).Required()
		gt.Equal(t, "http://example.com/api", client.BaseURL())
	})

	t.Run("Reject unsupported scheme", func(t *testing.T) {
		_, err := backend.New("ftp://example.com")
		gt.Error(t, err)
	})

	t.Run("Reject missing host", func(t *testing.T) {
		_, err := backend.New("http:///api")
		gt.Error(t, err)
	})
}

func TestClientList(t *testing.T) {
	t.Run("Envelope body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gt.Equal(t, http.MethodGet, r.Method)
			gt.Equal(t, "/api/v1/incidents", r.URL.Path)
			gt.NotEqual(t, "", r.Header.Get("X-Request-ID"))
			_, _ = io.WriteString(w, `{"data": [`+incidentJSON+`]}`)
		})

		incidents, err := client.List(context.Background())
		gt.NoError(t, err).Required()
		gt.Equal(t, 1, len(incidents))
		gt.Equal(t, types.IncidentID("1"), incidents[0].ID)
		gt.Equal(t, "High", incidents[0].AISeverity)
	})

	t.Run("Bare array body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `[`+incidentJSON+`]`)
		})

		incidents, err := client.List(context.Background())
		gt.NoError(t, err).Required()
		gt.Equal(t, 1, len(incidents))
		gt.Equal(t, "Database connection timeout", incidents[0].Title)
	})

	t.Run("Empty envelope", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"data": []}`)
		})

		incidents, err := client.List(context.Background())
		gt.NoError(t, err).Required()
		gt.NotNil(t, incidents)
		gt.Equal(t, 0, len(incidents))
	})

	t.Run("Malformed body is a client error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"data": "nope"}`)
		})

		_, err := client.List(context.Background())
		gt.Error(t, err)
		gt.Equal(t, backend.KindClientError, backend.KindOf(err))
	})
}

func TestClientGet(t *testing.T) {
	t.Run("Envelope body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gt.Equal(t, "/api/v1/incidents/1", r.URL.Path)
			_, _ = io.WriteString(w, `{"data": `+incidentJSON+`}`)
		})

		incident, err := client.Get(context.Background(), "1")
		gt.NoError(t, err).Required()
		gt.Equal(t, types.IncidentID("1"), incident.ID)
	})

	t.Run("Bare body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, incidentJSON)
		})

		incident, err := client.Get(context.Background(), "1")
		gt.NoError(t, err).Required()
		gt.Equal(t, "user-dashboard", incident.AffectedService)
	})

	t.Run("ID is path-escaped", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gt.Equal(t, "/api/v1/incidents/a%2Fb", r.URL.EscapedPath())
			_, _ = io.WriteString(w, incidentJSON)
		})

		_, err := client.Get(context.Background(), "a/b")
		gt.NoError(t, err)
	})

	t.Run("Empty ID makes no request", func(t *testing.T) {
		called := false
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		_, err := client.Get(context.Background(), "")
		gt.Error(t, err)
		gt.Equal(t, backend.KindClientError, backend.KindOf(err))
		gt.False(t, called)
	})

	t.Run("Not found", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message": "incident 999 does not exist"}`)
		})

		_, err := client.Get(context.Background(), "999")
		gt.Error(t, err)
		gt.True(t, backend.IsNotFound(err))
		gt.Equal(t, "Resource not found", err.Error())
		gt.Equal(t, http.StatusNotFound, backend.StatusOf(err))
	})
}

func TestClientCreate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gt.Equal(t, http.MethodPost, r.Method)
		gt.Equal(t, "/api/v1/incidents", r.URL.Path)
		gt.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gt.Equal(t, map[string]string{
			"title":            "Database connection timeout",
			"description":      "Users are experiencing slow response times",
			"affected_service": "user-dashboard",
		}, body)

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"data": `+incidentJSON+`}`)
	})

	incident, err := client.Create(context.Background(), model.Draft{
		Title:           "Database connection timeout",
		Description:     "Users are experiencing slow response times",
		AffectedService: "user-dashboard",
	})
	gt.NoError(t, err).Required()
	gt.Equal(t, types.IncidentID("1"), incident.ID)
	gt.Equal(t, "database", incident.AICategory)
}

func TestClientUpdate(t *testing.T) {
	t.Run("Only set fields are sent", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gt.Equal(t, http.MethodPut, r.Method)
			gt.Equal(t, "/api/v1/incidents/1", r.URL.Path)

			var body map[string]any
			gt.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			gt.Equal(t, map[string]any{"title": "Updated Title"}, body)

			_, _ = io.WriteString(w, `{"data": {"id": 1, "title": "Updated Title", "ai_severity": "High"}}`)
		})

		title := "Updated Title"
		incident, err := client.Update(context.Background(), "1", model.Patch{Title: &title})
		gt.NoError(t, err).Required()
		gt.Equal(t, "Updated Title", incident.Title)
	})

	t.Run("Empty patch makes no request", func(t *testing.T) {
		called := false
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		_, err := client.Update(context.Background(), "1", model.Patch{})
		gt.Error(t, err)
		gt.Equal(t, backend.KindClientError, backend.KindOf(err))
		gt.False(t, called)
	})
}

func TestClientRemove(t *testing.T) {
	t.Run("No content", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gt.Equal(t, http.MethodDelete, r.Method)
			gt.Equal(t, "/api/v1/incidents/1", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		})

		gt.NoError(t, client.Remove(context.Background(), "1"))
	})

	t.Run("Repeated delete is not found", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		err := client.Remove(context.Background(), "1")
		gt.True(t, backend.IsNotFound(err))
	})
}

func TestClientHealth(t *testing.T) {
	t.Run("Object is returned as-is", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gt.Equal(t, "/api/v1/health", r.URL.Path)
			_, _ = io.WriteString(w, `{"status": "ok", "data": {"db": "up"}}`)
		})

		status, err := client.Health(context.Background())
		gt.NoError(t, err).Required()
		gt.Equal(t, "ok", status["status"])
		gt.Equal[any](t, map[string]any{"db": "up"}, status["data"])
	})

	t.Run("Plain text body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, "OK\n")
		})

		status, err := client.Health(context.Background())
		gt.NoError(t, err).Required()
		gt.Equal(t, "OK", status["raw"])
	})
}

func TestClientErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    backend.Kind
		message string
		tagged  func(error) bool
	}{
		{"400 with message", 400, `{"message": "title is too long"}`, backend.KindInvalidRequest, "title is too long",
			func(err error) bool { return goerr.HasTag(err, backend.ErrTagInvalidRequest) }},
		{"400 without message", 400, ``, backend.KindInvalidRequest, "Invalid request data",
			func(err error) bool { return goerr.HasTag(err, backend.ErrTagInvalidRequest) }},
		{"404", 404, `{"message": "ignored"}`, backend.KindNotFound, "Resource not found",
			func(err error) bool { return goerr.HasTag(err, backend.ErrTagNotFound) }},
		{"500", 500, `{"message": "ignored"}`, backend.KindServerError, "Internal server error",
			func(err error) bool { return goerr.HasTag(err, backend.ErrTagServerError) }},
		{"503 without message", 503, `upstream down`, backend.KindUnexpectedStatus, "HTTP 503 error",
			func(err error) bool { return goerr.HasTag(err, backend.ErrTagUnexpectedStatus) }},
		{"409 with message", 409, `{"message": "already exists"}`, backend.KindUnexpectedStatus, "already exists",
			func(err error) bool { return goerr.HasTag(err, backend.ErrTagUnexpectedStatus) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := client.List(context.Background())
			gt.Error(t, err)
			gt.Equal(t, tt.kind, backend.KindOf(err))
			gt.Equal(t, tt.message, err.Error())
			gt.B(t, tt.tagged(err)).True()
			gt.Equal(t, tt.status, backend.StatusOf(err))
		})
	}
}

func TestClientNetworkError(t *testing.T) {
	t.Run("Connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		client, err := backend.New(url)
		gt.NoError(t, err).Required()

		_, err = client.List(context.Background())
		gt.Error(t, err)
		gt.True(t, backend.IsNetworkUnavailable(err))
		gt.Equal(t, "Network error - please check your connection", err.Error())
		gt.Equal(t, 0, backend.StatusOf(err))
	})

	t.Run("Timeout", func(t *testing.T) {
		done := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-done:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(done)

		client, err := backend.New(srv.URL, backend.WithTimeout(50*time.Millisecond))
		gt.NoError(t, err).Required()

		_, err = client.Get(context.Background(), "1")
		gt.True(t, backend.IsNetworkUnavailable(err))
	})
}

func TestKindOf(t *testing.T) {
	gt.Equal(t, backend.KindNone, backend.KindOf(nil))
	gt.Equal(t, backend.KindClientError, backend.KindOf(goerr.New("something else")))
	gt.Equal(t, 0, backend.StatusOf(nil))
}
