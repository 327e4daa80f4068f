package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/strata/pkg/adapters/memory"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/dsl"
	"github.com/aretw0/strata/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	b := dsl.New("poster").Title("Poster")
	b.Add("bg").Paint([]byte("sky")).Name("Background")
	shapes := b.Add("shapes").Group().Name("Shapes")
	shapes.Add("circle").Paint(nil).Name("Circle")
	b.Add("echo").Clone("bg").Name("Echo")
	spec, err := b.Build()
	require.NoError(t, err)

	sessions := session.NewManager(memory.NewStore())
	_, err = sessions.Import(context.Background(), spec)
	require.NoError(t, err)
	return NewServer(sessions)
}

func keys(resp OutlineResponse) []string {
	var out []string
	for _, e := range resp.Nodes {
		out = append(out, e.Key)
	}
	return out
}

func TestServer_InspectTree(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	resp, err := s.handleInspect(ctx, mcp.CallToolRequest{}, DocumentArgs{Document: "poster"})
	require.NoError(t, err)
	assert.Equal(t, "Poster", resp.Title)
	assert.Equal(t, []string{"root", "bg", "shapes", "circle", "echo"}, keys(resp))

	_, err = s.handleInspect(ctx, mcp.CallToolRequest{}, DocumentArgs{Document: "ghost"})
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestServer_EditAndUndo(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	res, err := s.handleAddNode(ctx, mcp.CallToolRequest{}, AddNodeArgs{
		Document: "poster",
		Kind:     domain.KindPaint,
		ID:       "sun",
		Name:     "Sun",
		Parent:   "Shapes",
		Anchor:   "Circle",
	})
	require.NoError(t, err)
	assert.Len(t, res.Created, 1)

	resp, err := s.handleInspect(ctx, mcp.CallToolRequest{}, DocumentArgs{Document: "poster"})
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "bg", "shapes", "circle", "sun", "echo"}, keys(resp))

	zero := 0
	_, err = s.handleMoveNode(ctx, mcp.CallToolRequest{}, MoveNodeArgs{Document: "poster", Node: "echo", Index: &zero})
	require.NoError(t, err)

	_, err = s.handleRemoveNodes(ctx, mcp.CallToolRequest{}, RemoveNodesArgs{Document: "poster", Nodes: []string{"Shapes"}})
	require.NoError(t, err)

	resp, err = s.handleInspect(ctx, mcp.CallToolRequest{}, DocumentArgs{Document: "poster"})
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "echo", "bg"}, keys(resp))

	res, err = s.handleUndo(ctx, mcp.CallToolRequest{}, DocumentArgs{Document: "poster"})
	require.NoError(t, err)
	assert.True(t, res.CanRedo)

	res, err = s.handleRedo(ctx, mcp.CallToolRequest{}, DocumentArgs{Document: "poster"})
	require.NoError(t, err)
	assert.False(t, res.CanRedo)
}

func TestServer_SetSource(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	_, err := s.handleSetSource(ctx, mcp.CallToolRequest{}, SetSourceArgs{Document: "poster", Clone: "Echo", Source: "Circle"})
	require.NoError(t, err)

	resp, err := s.handleInspect(ctx, mcp.CallToolRequest{}, DocumentArgs{Document: "poster"})
	require.NoError(t, err)
	last := resp.Nodes[len(resp.Nodes)-1]
	assert.Equal(t, "/Shapes/Circle", last.Source)

	_, err = s.handleSetSource(ctx, mcp.CallToolRequest{}, SetSourceArgs{Document: "poster", Clone: "Echo", Source: "Nowhere"})
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestServer_ListToolsOverJSONRPC(t *testing.T) {
	s := newServer(t)
	msg := s.MCPServer().HandleMessage(context.Background(), json.RawMessage(
		`{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`))

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var resp struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(data, &resp))

	var names []string
	for _, tool := range resp.Result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"list_documents", "inspect_tree", "add_node", "remove_nodes",
		"move_node", "set_source", "undo", "redo",
	}, names)
}

func TestServer_ReadDocumentResource(t *testing.T) {
	s := newServer(t)
	req := mcp.ReadResourceRequest{}
	req.Params.URI = documentURIPrefix + "poster"

	contents, err := s.readDocument(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	var spec domain.DocumentSpec
	require.NoError(t, json.Unmarshal([]byte(text.Text), &spec))
	assert.Equal(t, "bg", spec.Find("echo").Source)
}
