package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/internal/logging"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const documentURIPrefix = "strata://documents/"

// OutlineResponse is the structured result of inspect_tree.
type OutlineResponse struct {
	Document string                `json:"document" jsonschema_description:"Document ID"`
	Title    string                `json:"title,omitempty" jsonschema_description:"Document title"`
	Nodes    []strata.OutlineEntry `json:"nodes" jsonschema_description:"Attached nodes in pre-order"`
}

// Server exposes the documents of a session.Manager as MCP tools.
type Server struct {
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		mcpServer: server.NewMCPServer("strata-mcp", strata.Version),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func documentArg() mcp.ToolOption {
	return mcp.WithString("document", mcp.Required(), mcp.Description("ID of the document to work on"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List the IDs of the stored documents."),
	), s.handleListDocuments)

	s.mcpServer.AddTool(mcp.NewTool("inspect_tree",
		mcp.WithDescription("Outline the layer tree of a document: depth, handle, kind, name, clone source and clone count of every attached node."),
		documentArg(),
		mcp.WithOutputSchema[OutlineResponse](),
	), mcp.NewStructuredToolHandler(s.handleInspect))

	s.mcpServer.AddTool(mcp.NewTool("add_node",
		mcp.WithDescription("Create a node and insert it into the tree. Without anchor or index the node goes to the bottom of the stack."),
		documentArg(),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Node kind"),
			mcp.Enum("group", "paint", "clone", "filter", "mask")),
		mcp.WithString("id", mcp.Description("Stable key of the new node")),
		mcp.WithString("name", mcp.Description("Display name")),
		mcp.WithString("parent", mcp.Description("Parent reference (handle, path or unique name); defaults to the root")),
		mcp.WithString("anchor", mcp.Description("Sibling the node is placed after")),
		mcp.WithNumber("index", mcp.Description("Position among the parent's children, instead of anchor")),
		mcp.WithString("source", mcp.Description("Node mirrored by a clone")),
		mcp.WithOutputSchema[domain.OperationResult](),
	), mcp.NewStructuredToolHandler(s.handleAddNode))

	s.mcpServer.AddTool(mcp.NewTool("remove_nodes",
		mcp.WithDescription("Remove nodes with their subtrees as one undoable step. Clones of removed nodes keep their picture."),
		documentArg(),
		mcp.WithArray("nodes", mcp.Required(), mcp.Description("References of the subtree tops to remove"),
			mcp.Items(map[string]any{"type": "string"})),
		mcp.WithOutputSchema[domain.OperationResult](),
	), mcp.NewStructuredToolHandler(s.handleRemoveNodes))

	s.mcpServer.AddTool(mcp.NewTool("move_node",
		mcp.WithDescription("Move a node after anchor, or to index, in parent (its current parent by default)."),
		documentArg(),
		mcp.WithString("node", mcp.Required(), mcp.Description("Node to move")),
		mcp.WithString("parent", mcp.Description("New parent")),
		mcp.WithString("anchor", mcp.Description("Sibling the node is placed after")),
		mcp.WithNumber("index", mcp.Description("Position among the parent's children, instead of anchor")),
		mcp.WithOutputSchema[domain.OperationResult](),
	), mcp.NewStructuredToolHandler(s.handleMoveNode))

	s.mcpServer.AddTool(mcp.NewTool("set_source",
		mcp.WithDescription("Retarget a clone. An empty source detaches it."),
		documentArg(),
		mcp.WithString("clone", mcp.Required(), mcp.Description("Clone to retarget")),
		mcp.WithString("source", mcp.Description("New source")),
		mcp.WithOutputSchema[domain.OperationResult](),
	), mcp.NewStructuredToolHandler(s.handleSetSource))

	s.mcpServer.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last command of a document."),
		documentArg(),
		mcp.WithOutputSchema[domain.OperationResult](),
	), mcp.NewStructuredToolHandler(s.handleUndo))

	s.mcpServer.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Reapply the last undone command of a document."),
		documentArg(),
		mcp.WithOutputSchema[domain.OperationResult](),
	), mcp.NewStructuredToolHandler(s.handleRedo))
}

// DocumentArgs identifies the document a tool works on.
type DocumentArgs struct {
	Document string `json:"document"`
}

type AddNodeArgs struct {
	Document string      `json:"document"`
	Kind     domain.Kind `json:"kind"`
	ID       string      `json:"id,omitempty"`
	Name     string      `json:"name,omitempty"`
	Parent   string      `json:"parent,omitempty"`
	Anchor   string      `json:"anchor,omitempty"`
	Index    *int        `json:"index,omitempty"`
	Source   string      `json:"source,omitempty"`
}

type RemoveNodesArgs struct {
	Document string   `json:"document"`
	Nodes    []string `json:"nodes"`
}

type MoveNodeArgs struct {
	Document string `json:"document"`
	Node     string `json:"node"`
	Parent   string `json:"parent,omitempty"`
	Anchor   string `json:"anchor,omitempty"`
	Index    *int   `json:"index,omitempty"`
}

type SetSourceArgs struct {
	Document string `json:"document"`
	Clone    string `json:"clone"`
	Source   string `json:"source,omitempty"`
}

func (s *Server) handleListDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.sessions.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	data, _ := json.Marshal(ids)
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleInspect(ctx context.Context, request mcp.CallToolRequest, args DocumentArgs) (OutlineResponse, error) {
	resp := OutlineResponse{Document: args.Document}
	err := s.sessions.Read(ctx, args.Document, func(doc *strata.Document) error {
		resp.Title = doc.Title
		resp.Nodes = doc.Inspect()
		return nil
	})
	if err != nil {
		return OutlineResponse{}, fmt.Errorf("inspect failed: %w", err)
	}
	return resp, nil
}

func (s *Server) handleAddNode(ctx context.Context, request mcp.CallToolRequest, args AddNodeArgs) (domain.OperationResult, error) {
	return s.apply(ctx, args.Document, domain.Operation{
		Op:     domain.OpAdd,
		Parent: args.Parent,
		Anchor: args.Anchor,
		Index:  args.Index,
		Spec: &domain.NodeSpec{
			ID:     args.ID,
			Kind:   args.Kind,
			Name:   args.Name,
			Source: args.Source,
		},
	})
}

func (s *Server) handleRemoveNodes(ctx context.Context, request mcp.CallToolRequest, args RemoveNodesArgs) (domain.OperationResult, error) {
	return s.apply(ctx, args.Document, domain.Operation{Op: domain.OpRemove, Nodes: args.Nodes})
}

func (s *Server) handleMoveNode(ctx context.Context, request mcp.CallToolRequest, args MoveNodeArgs) (domain.OperationResult, error) {
	return s.apply(ctx, args.Document, domain.Operation{
		Op:     domain.OpMove,
		Node:   args.Node,
		Parent: args.Parent,
		Anchor: args.Anchor,
		Index:  args.Index,
	})
}

func (s *Server) handleSetSource(ctx context.Context, request mcp.CallToolRequest, args SetSourceArgs) (domain.OperationResult, error) {
	return s.apply(ctx, args.Document, domain.Operation{Op: domain.OpSetSource, Node: args.Clone, Source: args.Source})
}

func (s *Server) handleUndo(ctx context.Context, request mcp.CallToolRequest, args DocumentArgs) (domain.OperationResult, error) {
	return s.apply(ctx, args.Document, domain.Operation{Op: domain.OpUndo})
}

func (s *Server) handleRedo(ctx context.Context, request mcp.CallToolRequest, args DocumentArgs) (domain.OperationResult, error) {
	return s.apply(ctx, args.Document, domain.Operation{Op: domain.OpRedo})
}

func (s *Server) apply(ctx context.Context, docID string, op domain.Operation) (domain.OperationResult, error) {
	var res domain.OperationResult
	err := s.sessions.Write(ctx, docID, func(ctx context.Context, doc *strata.Document) error {
		var err error
		res, err = doc.Apply(ctx, op)
		return err
	})
	if err != nil {
		s.logger.Debug("MCP operation rejected", "op", op.Op, "document", docID, "err", err)
		return domain.OperationResult{}, fmt.Errorf("%s failed: %w", op.Op, err)
	}
	return res, nil
}

func (s *Server) registerResources() {
	template := mcp.NewResourceTemplate(documentURIPrefix+"{id}", "Document snapshot",
		mcp.WithTemplateDescription("Snapshot of a stored document as JSON"),
		mcp.WithTemplateMIMEType("application/json"),
	)
	s.mcpServer.AddResourceTemplate(template, s.readDocument)
}

func (s *Server) readDocument(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	docID := strings.TrimPrefix(uri, documentURIPrefix)
	if docID == "" || docID == uri {
		return nil, fmt.Errorf("invalid document uri %q", uri)
	}

	var spec *domain.DocumentSpec
	err := s.sessions.Read(ctx, docID, func(doc *strata.Document) error {
		spec = doc.Spec()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	data, err := json.Marshal(spec)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
