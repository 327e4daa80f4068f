package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/pkg/adapters/memory"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/dsl"
	"github.com/aretw0/strata/pkg/observability"
	"github.com/aretw0/strata/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	handler  http.Handler
	sessions *session.Manager
	hub      *EventHub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hub := NewEventHub(0)
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	sessions := session.NewManager(memory.NewStore(),
		session.WithDocumentOptions(func(id string) []strata.Option {
			return []strata.Option{
				strata.WithListener(observability.Combine(hub.Listener(id), metrics.Listener())),
				strata.WithLifecycleHooks(metrics.Hooks()),
			}
		}),
		session.WithCloseHook(hub.Forget),
	)
	return &fixture{
		handler:  NewHandler(sessions, WithEvents(hub), WithMetrics(metrics, reg)),
		sessions: sessions,
		hub:      hub,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body == nil {
		req.ContentLength = 0
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func posterSpec(t *testing.T) *domain.DocumentSpec {
	t.Helper()
	b := dsl.New("poster").Title("Poster")
	b.Add("bg").Paint([]byte("sky")).Name("Background")
	b.Add("echo").Clone("bg").Name("Echo")
	spec, err := b.Build()
	require.NoError(t, err)
	return spec
}

func TestServer_HealthAndInfo(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	info := decode[map[string]string](t, w)
	assert.Equal(t, "strata-http", info["app"])
	assert.Equal(t, strata.Version, info["version"])
	assert.Equal(t, "1.0.0", info["api_version"])
}

func TestServer_OpenAPISpecIsValid(t *testing.T) {
	doc, err := Swagger()
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/documents/{id}/ops"))

	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/openapi.yaml", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")
}

func TestServer_DocumentLifecycle(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/documents", CreateDocumentRequest{Spec: posterSpec(t)})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	summary := decode[DocumentSummary](t, w)
	assert.Equal(t, "poster", summary.ID)
	assert.Equal(t, "Poster", summary.Title)

	w = f.do(t, http.MethodGet, "/documents", nil)
	assert.Equal(t, []string{"poster"}, decode[[]string](t, w))

	w = f.do(t, http.MethodGet, "/documents/poster/outline", nil)
	require.Equal(t, http.StatusOK, w.Code)
	outline := decode[[]strata.OutlineEntry](t, w)
	require.Len(t, outline, 3)
	assert.Equal(t, "Background", outline[1].Name)
	assert.Equal(t, 1, outline[1].Clones)

	w = f.do(t, http.MethodGet, "/documents/poster?format=yaml", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/yaml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "source: bg")

	w = f.do(t, http.MethodGet, "/documents/poster?format=xml", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodDelete, "/documents/poster", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/documents/poster", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_CreateEmptyAndDuplicate(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/documents", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, decode[DocumentSummary](t, w).ID)

	w = f.do(t, http.MethodPost, "/documents", CreateDocumentRequest{ID: "sketch", Title: "Sketch"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodPost, "/documents", CreateDocumentRequest{ID: "sketch"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_CreateRejectsInvalidSpec(t *testing.T) {
	f := newFixture(t)
	spec := posterSpec(t)
	spec.Find("echo").Source = "ghost"

	w := f.do(t, http.MethodPost, "/documents", CreateDocumentRequest{Spec: spec})
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[ErrorResponse](t, w)
	assert.Equal(t, "invalid document", resp.Error)
	assert.NotEmpty(t, resp.Details)
}

func TestServer_OperationsAndHistory(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/documents", CreateDocumentRequest{Spec: posterSpec(t)}).Code)

	w := f.do(t, http.MethodPost, "/documents/poster/ops", domain.Operation{
		Op:     domain.OpAdd,
		Parent: "/",
		Spec:   &domain.NodeSpec{ID: "sun", Kind: domain.KindPaint, Name: "Sun"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[domain.OperationResult](t, w)
	assert.Len(t, res.Created, 1)
	assert.True(t, res.CanUndo)

	w = f.do(t, http.MethodPost, "/documents/poster/ops", domain.Operation{Op: domain.OpRemove, Nodes: []string{"Ghost"}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/documents/poster/ops", domain.Operation{Op: "paint"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/documents/poster/undo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[domain.OperationResult](t, w).CanRedo)

	w = f.do(t, http.MethodPost, "/documents/poster/undo", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/documents/poster/redo", nil)
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := f.sessions.Store().Load(context.Background(), "poster")
	require.NoError(t, err)
	assert.NotNil(t, stored.Find("sun"), "the redone add is persisted")

	w = f.do(t, http.MethodGet, "/documents/poster/graph?highlight=sun,bg", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "class sun highlighted")

	w = f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `strata_document_nodes{document="poster"} 4`)
	assert.Contains(t, w.Body.String(), "# HELP strata_document_nodes Nodes attached to the tree of each open document, root included")
	assert.Contains(t, w.Body.String(), "strata_structure_events_total")
}

func TestServer_SubscribeEvents(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/documents", CreateDocumentRequest{Spec: posterSpec(t)}).Code)

	srv := httptest.NewServer(f.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/documents/poster/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	go func() {
		body := strings.NewReader(`{"op":"remove","nodes":["Echo"]}`)
		r, err := http.Post(srv.URL+"/documents/poster/ops", "application/json", body)
		if err == nil {
			r.Body.Close()
		}
	}()

	var got []string
	for len(got) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			got = append(got, strings.TrimSpace(name))
		}
	}
	assert.Equal(t, []string{string(domain.EventAboutToRemove), string(domain.EventRemoved)}, got)
}

func TestServer_SubscribeUnknownDocument(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/documents/ghost/events", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
