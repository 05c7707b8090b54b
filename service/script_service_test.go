package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/scriptbridge/catalog"
	"github.com/c360/scriptbridge/config"
	"github.com/c360/scriptbridge/metric"
	"github.com/c360/scriptbridge/nodeops"
	"github.com/c360/scriptbridge/scriptgraph"
)

// testService builds a ScriptService over an in-memory catalog with no
// NATS and no store
func testService(t *testing.T) *ScriptService {
	t.Helper()

	r := catalog.NewRegistry()
	_, err := r.AddFunction(
		catalog.EntryMeta{Category: "Utilities|String", Tooltip: "Prints a string to the log"},
		catalog.CallableMember{
			Name:     "PrintString",
			Owner:    scriptgraph.TypeRef{Name: "SystemLibrary", Path: "/types/SystemLibrary"},
			IsStatic: true,
			Params: []scriptgraph.ParamDecl{
				{Name: "in string", Type: scriptgraph.PinType{Category: scriptgraph.PinString},
					Direction: scriptgraph.DirectionInput, DefaultValue: "Hello"},
			},
		})
	require.NoError(t, err)
	_, err = r.AddCast(catalog.EntryMeta{}, scriptgraph.TypeRef{Name: "Enemy", Path: "/game/Enemy"})
	require.NoError(t, err)

	ts := catalog.NewTypeSystem()
	require.NoError(t, ts.Register(catalog.TypeDescriptor{
		Ref: scriptgraph.TypeRef{Name: "Enemy", Path: "/game/Enemy"},
	}))

	svc, err := NewScriptService(config.Default(), Dependencies{
		Catalog:         r,
		Types:           ts,
		MetricsRegistry: metric.NewMetricsRegistry(),
	})
	require.NoError(t, err)
	return svc
}

func mustParams(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func createTestDocument(t *testing.T, svc *ScriptService, id string) {
	t.Helper()
	resp := svc.Dispatch(context.Background(), Command{
		Action: "create_document",
		Params: mustParams(t, map[string]any{"id": id, "name": "PlayerController"}),
	})
	require.True(t, resp.Success, "create_document failed: %s", resp.Error)
}

func TestDispatchDiscoverNodes(t *testing.T) {
	svc := testService(t)

	resp := svc.Dispatch(context.Background(), Command{
		Action:    "discover_nodes",
		RequestID: "req-1",
		Params:    mustParams(t, map[string]any{"search_term": "PrintString"}),
	})

	require.True(t, resp.Success)
	assert.Equal(t, "req-1", resp.RequestID)
	data := resp.Data.(map[string]any)
	assert.Equal(t, 1, data["count"])
}

func TestDispatchCreateNodeLifecycle(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	createTestDocument(t, svc, "doc-1")

	created := svc.Dispatch(ctx, Command{
		Action:     "create_node",
		DocumentID: "doc-1",
		Params: mustParams(t, nodeops.CreateRequest{
			NodeType: "SystemLibrary::PrintString",
			Position: scriptgraph.Position{X: 100, Y: 50},
		}),
	})
	require.True(t, created.Success, "create_node failed: %s", created.Error)
	res := created.Data.(nodeops.CreateResult)
	require.NotNil(t, res.Node)
	assert.Equal(t, scriptgraph.KindFunctionCall, res.Node.Kind)

	applied := svc.Dispatch(ctx, Command{
		Action:     "apply_pin_defaults",
		DocumentID: "doc-1",
		Params: mustParams(t, map[string]any{
			"node_id":  res.Node.ID,
			"defaults": map[string]any{"in string": "Hello from the agent"},
		}),
	})
	require.True(t, applied.Success, "apply_pin_defaults failed: %s", applied.Error)
	defaults := applied.Data.(nodeops.DefaultsResult)
	assert.Equal(t, []string{"in string"}, defaults.Applied)

	fetched := svc.Dispatch(ctx, Command{
		Action:     "get_node",
		DocumentID: "doc-1",
		Params:     mustParams(t, map[string]any{"node_id": res.Node.ID}),
	})
	require.True(t, fetched.Success)
	node := fetched.Data.(*scriptgraph.Node)
	assert.Equal(t, "Hello from the agent", node.InputPort("in string").DefaultValue)
}

func TestDispatchApplyDefaultsFailureEnvelope(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	createTestDocument(t, svc, "doc-1")

	created := svc.Dispatch(ctx, Command{
		Action:     "create_node",
		DocumentID: "doc-1",
		Params:     mustParams(t, nodeops.CreateRequest{NodeType: "SystemLibrary::PrintString"}),
	})
	require.True(t, created.Success)
	nodeID := created.Data.(nodeops.CreateResult).Node.ID

	// Every requested port fails: the call fails, with the breakdown
	resp := svc.Dispatch(ctx, Command{
		Action:     "apply_pin_defaults",
		DocumentID: "doc-1",
		Params: mustParams(t, map[string]any{
			"node_id":  nodeID,
			"defaults": map[string]any{"no_such_pin": 1, "execute": "x"},
		}),
	})
	assert.False(t, resp.Success)
	assert.Equal(t, "invalid_state", resp.ErrorClass)
	assert.Contains(t, resp.Suggestion, "failed_ports")
	res := resp.Data.(nodeops.DefaultsResult)
	assert.Empty(t, res.Applied)
	assert.Len(t, res.Failed, 2)

	// A mixed batch also fails overall, but the good port keeps its value
	mixed := svc.Dispatch(ctx, Command{
		Action:     "apply_pin_defaults",
		DocumentID: "doc-1",
		Params: mustParams(t, map[string]any{
			"node_id":  nodeID,
			"defaults": map[string]any{"in string": "kept", "no_such_pin": 1},
		}),
	})
	assert.False(t, mixed.Success)
	assert.Equal(t, []string{"in string"}, mixed.Data.(nodeops.DefaultsResult).Applied)

	fetched := svc.Dispatch(ctx, Command{
		Action:     "get_node",
		DocumentID: "doc-1",
		Params:     mustParams(t, map[string]any{"node_id": nodeID}),
	})
	require.True(t, fetched.Success)
	assert.Equal(t, "kept", fetched.Data.(*scriptgraph.Node).InputPort("in string").DefaultValue)
}

func TestDispatchUnknownSpawnerEnvelope(t *testing.T) {
	svc := testService(t)
	createTestDocument(t, svc, "doc-1")

	resp := svc.Dispatch(context.Background(), Command{
		Action:     "create_node",
		DocumentID: "doc-1",
		RequestID:  "req-9",
		Params:     mustParams(t, nodeops.CreateRequest{NodeType: "Foo::Bar"}),
	})

	assert.False(t, resp.Success)
	assert.Equal(t, "req-9", resp.RequestID)
	assert.Equal(t, "not_found", resp.ErrorClass)
	assert.Contains(t, resp.Error, "Foo::Bar")
	assert.Contains(t, resp.Suggestion, "discover_nodes")
	assert.Nil(t, resp.Data)
}

func TestDispatchUnknownDocument(t *testing.T) {
	svc := testService(t)

	resp := svc.Dispatch(context.Background(), Command{
		Action:     "create_node",
		DocumentID: "missing",
		Params:     mustParams(t, nodeops.CreateRequest{NodeType: "PrintString"}),
	})
	assert.False(t, resp.Success)
	assert.Equal(t, "not_found", resp.ErrorClass)
	assert.Contains(t, resp.Suggestion, "create_document")
}

func TestDispatchUnknownAction(t *testing.T) {
	svc := testService(t)

	resp := svc.Dispatch(context.Background(), Command{Action: "set_phasers_to_stun"})
	assert.False(t, resp.Success)
	assert.Equal(t, "unsupported", resp.ErrorClass)
	assert.Contains(t, resp.Suggestion, "discover_nodes")
}

func TestDispatchMalformedParams(t *testing.T) {
	svc := testService(t)
	createTestDocument(t, svc, "doc-1")

	resp := svc.Dispatch(context.Background(), Command{
		Action:     "create_node",
		DocumentID: "doc-1",
		Params:     json.RawMessage(`{"node_type": 42}`),
	})
	assert.False(t, resp.Success)
	assert.Equal(t, "invalid", resp.ErrorClass)
}

func TestDispatchConnectAndReroute(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	createTestDocument(t, svc, "doc-1")

	first := svc.Dispatch(ctx, Command{
		Action:     "create_node",
		DocumentID: "doc-1",
		Params: mustParams(t, nodeops.CreateRequest{
			NodeType: "SystemLibrary::PrintString",
			Position: scriptgraph.Position{X: 0, Y: 0},
		}),
	})
	require.True(t, first.Success)
	second := svc.Dispatch(ctx, Command{
		Action:     "create_node",
		DocumentID: "doc-1",
		Params: mustParams(t, nodeops.CreateRequest{
			NodeType: "SystemLibrary::PrintString",
			Position: scriptgraph.Position{X: 400, Y: 100},
		}),
	})
	require.True(t, second.Success)

	srcID := first.Data.(nodeops.CreateResult).Node.ID
	dstID := second.Data.(nodeops.CreateResult).Node.ID

	connected := svc.Dispatch(ctx, Command{
		Action:     "connect_ports",
		DocumentID: "doc-1",
		Params: mustParams(t, map[string]any{
			"source":      map[string]string{"node_id": srcID, "port": "then"},
			"destination": map[string]string{"node_id": dstID, "port": "execute"},
		}),
	})
	require.True(t, connected.Success, "connect_ports failed: %s", connected.Error)

	rerouted := svc.Dispatch(ctx, Command{
		Action:     "insert_reroute",
		DocumentID: "doc-1",
		Params: mustParams(t, map[string]any{
			"source":      map[string]string{"node_id": srcID, "port": "then"},
			"destination": map[string]string{"node_id": dstID, "port": "execute"},
		}),
	})
	require.True(t, rerouted.Success, "insert_reroute failed: %s", rerouted.Error)
	knot := rerouted.Data.(*scriptgraph.Node)
	assert.Equal(t, scriptgraph.KindReroute, knot.Kind)
	// Midpoint of (0,0) and (400,100) snapped to the canvas grid
	assert.Equal(t, scriptgraph.Position{X: 208, Y: 48}, knot.Position)
}

func TestDispatchListDocumentsInMemory(t *testing.T) {
	svc := testService(t)
	createTestDocument(t, svc, "doc-1")
	createTestDocument(t, svc, "doc-2")

	resp := svc.Dispatch(context.Background(), Command{Action: "list_documents"})
	require.True(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.Len(t, data["documents"], 2)
}

func TestDispatchNullParams(t *testing.T) {
	svc := testService(t)
	resp := svc.Dispatch(context.Background(), Command{
		Action: "create_document",
		Params: json.RawMessage(`null`),
	})
	// null params decode to the zero value; id validation rejects it
	assert.False(t, resp.Success)
	assert.Equal(t, "invalid", resp.ErrorClass)
}
