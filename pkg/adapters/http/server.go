package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/internal/logging"
	"github.com/aretw0/strata/internal/presentation/graph"
	"github.com/aretw0/strata/pkg/adapters/file"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/observability"
	"github.com/aretw0/strata/pkg/schema"
	"github.com/aretw0/strata/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves the documents of a session.Manager over HTTP.
type Server struct {
	Sessions *session.Manager
	Events   *EventHub

	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithEvents enables the SSE endpoint. The hub must also be attached to the
// documents, see EventHub.Listener.
func WithEvents(hub *EventHub) Option {
	return func(s *Server) {
		s.Events = hub
	}
}

// WithMetrics exposes g at /metrics and keeps the node gauge of m current.
func WithMetrics(m *observability.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for the documents held by sessions.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{Sessions: sessions, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/openapi.yaml", s.GetSpec)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", s.ListDocuments)
		r.Post("/", s.CreateDocument)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetDocument)
			r.Delete("/", s.DeleteDocument)
			r.Get("/outline", s.GetOutline)
			r.Get("/graph", s.GetGraph)
			r.Post("/ops", s.ApplyOperation)
			r.Post("/undo", s.Undo)
			r.Post("/redo", s.Redo)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSpec serves the embedded OpenAPI description.
func (s *Server) GetSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(rawSpec)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := Swagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "strata-http",
		"version":     strata.Version,
		"api_version": apiVersion,
	})
}

// ListDocuments handles GET /documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, "list documents", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// CreateDocumentRequest is the body of POST /documents. When Spec is set the
// snapshot is imported, otherwise an empty document is created.
type CreateDocumentRequest struct {
	ID    string               `json:"id,omitempty"`
	Title string               `json:"title,omitempty"`
	Spec  *domain.DocumentSpec `json:"spec,omitempty"`
}

// DocumentSummary identifies a document.
type DocumentSummary struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// CreateDocument handles POST /documents.
func (s *Server) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var body CreateDocumentRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
			return
		}
	}

	var (
		doc *strata.Document
		err error
	)
	switch {
	case body.Spec != nil:
		spec := body.Spec.Clone()
		if body.ID != "" {
			spec.ID = body.ID
		}
		if body.Title != "" {
			spec.Title = body.Title
		}
		if verr := schema.ValidateDocument(spec, nil); verr != nil {
			writeValidation(w, verr)
			return
		}
		doc, err = s.Sessions.Import(r.Context(), spec)
	case body.ID != "":
		doc, err = s.Sessions.CreateWithID(r.Context(), body.ID, body.Title)
	default:
		doc, err = s.Sessions.Create(r.Context(), body.Title)
	}
	if err != nil {
		s.fail(w, "create document", err)
		return
	}
	s.logger.Info("document created", "document", doc.ID)
	writeJSON(w, http.StatusCreated, DocumentSummary{ID: doc.ID, Title: doc.Title})
}

// GetDocument handles GET /documents/{id}, in JSON or, with ?format=yaml, YAML.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	format := string(file.FormatJSON)
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if format != string(file.FormatJSON) && format != string(file.FormatYAML) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported format %q", format))
		return
	}

	var spec *domain.DocumentSpec
	err := s.Sessions.Read(r.Context(), chi.URLParam(r, "id"), func(doc *strata.Document) error {
		spec = doc.Spec()
		return nil
	})
	if err != nil {
		s.fail(w, "get document", err)
		return
	}

	data, err := file.Marshal(spec, file.Format(format))
	if err != nil {
		s.fail(w, "encode document", err)
		return
	}
	if format == string(file.FormatYAML) {
		w.Header().Set("Content-Type", "application/yaml")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	_, _ = w.Write(data)
}

// DeleteDocument handles DELETE /documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.fail(w, "delete document", err)
		return
	}
	if s.metrics != nil {
		s.metrics.Forget(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetOutline handles GET /documents/{id}/outline.
func (s *Server) GetOutline(w http.ResponseWriter, r *http.Request) {
	var outline []strata.OutlineEntry
	err := s.Sessions.Read(r.Context(), chi.URLParam(r, "id"), func(doc *strata.Document) error {
		outline = doc.Inspect()
		return nil
	})
	if err != nil {
		s.fail(w, "outline", err)
		return
	}
	writeJSON(w, http.StatusOK, outline)
}

// GetGraph handles GET /documents/{id}/graph?highlight=a,b.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	var highlight []string
	if err := runtime.BindQueryParameter("form", false, false, "highlight", r.URL.Query(), &highlight); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var spec *domain.DocumentSpec
	err := s.Sessions.Read(r.Context(), chi.URLParam(r, "id"), func(doc *strata.Document) error {
		spec = doc.Spec()
		return nil
	})
	if err != nil {
		s.fail(w, "graph", err)
		return
	}

	var overlay *graph.GraphOverlay
	if len(highlight) > 0 {
		overlay = &graph.GraphOverlay{Highlighted: highlight}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(spec, overlay)))
}

// ApplyOperation handles POST /documents/{id}/ops.
func (s *Server) ApplyOperation(w http.ResponseWriter, r *http.Request) {
	var op domain.Operation
	if err := json.NewDecoder(r.Body).Decode(&op); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	s.apply(w, r, op)
}

// Undo handles POST /documents/{id}/undo.
func (s *Server) Undo(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, domain.Operation{Op: domain.OpUndo})
}

// Redo handles POST /documents/{id}/redo.
func (s *Server) Redo(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, domain.Operation{Op: domain.OpRedo})
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request, op domain.Operation) {
	id := chi.URLParam(r, "id")
	var res domain.OperationResult
	err := s.Sessions.Write(r.Context(), id, func(ctx context.Context, doc *strata.Document) error {
		var err error
		res, err = doc.Apply(ctx, op)
		if err == nil && s.metrics != nil {
			// Inspect lists attached nodes only, root first.
			s.metrics.ObserveNodes(id, len(doc.Inspect()))
		}
		return err
	})
	if err != nil {
		s.fail(w, string(op.Op), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SubscribeEvents handles GET /documents/{id}/events (SSE). With ?replay=true
// the events recorded so far are sent first.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	if s.Events == nil {
		writeError(w, http.StatusNotFound, errors.New("event streaming is disabled"))
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming not supported"))
		return
	}
	var replay bool
	if err := runtime.BindQueryParameter("form", true, false, "replay", r.URL.Query(), &replay); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id := chi.URLParam(r, "id")
	// Opening the document attaches its listener before we subscribe.
	if err := s.Sessions.Read(r.Context(), id, func(*strata.Document) error { return nil }); err != nil {
		s.fail(w, "subscribe", err)
		return
	}

	ctx := r.Context()
	events := s.Events.Subscribe(ctx, id)
	s.logger.Info("SSE client subscribed", "document", id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")

	if replay {
		for _, ev := range s.Events.History(id) {
			writeEvent(w, ev)
		}
	}
	flusher.Flush()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("SSE client disconnected", "document", id)
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			writeEvent(w, ev)
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, ev domain.StructureEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
}

// fail maps err to a status code and logs server-side failures.
func (s *Server) fail(w http.ResponseWriter, action string, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "action", action, "err", err)
	} else {
		s.logger.Debug("request rejected", "action", action, "err", err)
	}
	writeError(w, status, err)
}
