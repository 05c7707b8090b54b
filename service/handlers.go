package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/c360/scriptbridge/descriptor"
	"github.com/c360/scriptbridge/discovery"
	"github.com/c360/scriptbridge/docstore"
	"github.com/c360/scriptbridge/errors"
	"github.com/c360/scriptbridge/nodeops"
	"github.com/c360/scriptbridge/scriptgraph"
)

// decodeParams unmarshals command params into the handler's shape.
// Missing params decode as the zero value.
func decodeParams(cmd Command, out any) error {
	if len(cmd.Params) == 0 {
		return nil
	}
	if err := json.Unmarshal(cmd.Params, out); err != nil {
		return errors.WrapInvalid(err, "ScriptService", cmd.Action, "params decoding")
	}
	return nil
}

// handleDiscoverNodes walks the catalog with the requested filters.
// The document is optional context: with one, member externality in
// the returned descriptors is judged against its generated type.
func (s *ScriptService) handleDiscoverNodes(ctx context.Context, cmd Command) (any, error) {
	var filter discovery.Filter
	if err := decodeParams(cmd, &filter); err != nil {
		return nil, err
	}
	if filter.MaxResults <= 0 || filter.MaxResults > s.cfg.Discovery.MaxResults {
		filter.MaxResults = s.cfg.Discovery.MaxResults
	}

	var doc *scriptgraph.Document
	if cmd.DocumentID != "" {
		od, err := s.openDoc(ctx, cmd.DocumentID)
		if err != nil {
			return nil, err
		}
		od.mu.Lock()
		defer od.mu.Unlock()
		doc = od.doc
	}

	start := time.Now()
	results := s.engine.Discover(doc, filter)
	s.recordDiscovery(time.Since(start))

	return map[string]any{
		"descriptors": results,
		"count":       len(results),
	}, nil
}

func (s *ScriptService) recordDiscovery(elapsed time.Duration) {
	if s.deps.MetricsRegistry == nil {
		return
	}
	core := s.deps.MetricsRegistry.CoreMetrics()
	core.RecordDiscover(elapsed)
	core.CatalogEntries.Set(float64(s.deps.Catalog.Len()))
	core.DescriptorCacheSize.Set(float64(s.cache.Len()))
}

func (s *ScriptService) handleCreateNode(ctx context.Context, cmd Command) (any, error) {
	var req nodeops.CreateRequest
	if err := decodeParams(cmd, &req); err != nil {
		return nil, err
	}
	return s.withDocument(ctx, cmd.DocumentID, func(doc *scriptgraph.Document) (any, error) {
		g, err := graphOf(doc, cmd.Graph)
		if err != nil {
			return nil, err
		}
		res, err := s.creator.CreateAndConfigure(doc, g, req)
		if err != nil {
			return nil, err
		}
		if s.deps.MetricsRegistry != nil && res.Tier != "" {
			s.deps.MetricsRegistry.CoreMetrics().RecordResolveTier(res.Tier)
		}
		return res, nil
	})
}

func (s *ScriptService) handleApplyDefaults(ctx context.Context, cmd Command) (any, error) {
	var params struct {
		NodeID   string         `json:"node_id"`
		Defaults map[string]any `json:"defaults"`
	}
	if err := decodeParams(cmd, &params); err != nil {
		return nil, err
	}
	return s.withDocument(ctx, cmd.DocumentID, func(doc *scriptgraph.Document) (any, error) {
		g, err := graphOf(doc, cmd.Graph)
		if err != nil {
			return nil, err
		}
		node, err := g.Node(params.NodeID)
		if err != nil {
			return nil, err
		}
		res := nodeops.ApplyDefaults(node, params.Defaults)
		if len(res.Failed) > 0 {
			// The call as a whole fails; the breakdown still reaches the
			// client so it can retry just the failed ports.
			err := errors.WrapInvalidState(
				fmt.Errorf("%d of %d port defaults failed", len(res.Failed), len(res.Failed)+len(res.Applied)),
				"ScriptService", cmd.Action, "port default application")
			return res, errors.WithSuggestion(err,
				"inspect failed_ports for per-port reasons; ports in successful_ports kept their new defaults")
		}
		return res, nil
	})
}

func (s *ScriptService) handleGetNode(ctx context.Context, cmd Command) (any, error) {
	var params struct {
		NodeID string `json:"node_id"`
	}
	if err := decodeParams(cmd, &params); err != nil {
		return nil, err
	}

	od, err := s.openDoc(ctx, cmd.DocumentID)
	if err != nil {
		return nil, err
	}
	od.mu.Lock()
	defer od.mu.Unlock()

	g, err := graphOf(od.doc, cmd.Graph)
	if err != nil {
		return nil, err
	}
	return g.Node(params.NodeID)
}

// portPair addresses one connection end to end
type portPair struct {
	Source      scriptgraph.LinkRef `json:"source"`
	Destination scriptgraph.LinkRef `json:"destination"`
}

func (p portPair) validate(action string) error {
	if p.Source.NodeID == "" || p.Source.Port == "" ||
		p.Destination.NodeID == "" || p.Destination.Port == "" {
		return errors.WrapInvalid(
			fmt.Errorf("source and destination must both name a node_id and port"),
			"ScriptService", action, "params validation")
	}
	return nil
}

func (s *ScriptService) handleConnectPorts(ctx context.Context, cmd Command) (any, error) {
	var params portPair
	if err := decodeParams(cmd, &params); err != nil {
		return nil, err
	}
	if err := params.validate(cmd.Action); err != nil {
		return nil, err
	}
	return s.withDocument(ctx, cmd.DocumentID, func(doc *scriptgraph.Document) (any, error) {
		g, err := graphOf(doc, cmd.Graph)
		if err != nil {
			return nil, err
		}
		if err := g.Connect(params.Source.NodeID, params.Source.Port,
			params.Destination.NodeID, params.Destination.Port); err != nil {
			return nil, err
		}
		return map[string]any{"connected": true}, nil
	})
}

func (s *ScriptService) handleDisconnectPorts(ctx context.Context, cmd Command) (any, error) {
	var params portPair
	if err := decodeParams(cmd, &params); err != nil {
		return nil, err
	}
	if err := params.validate(cmd.Action); err != nil {
		return nil, err
	}
	return s.withDocument(ctx, cmd.DocumentID, func(doc *scriptgraph.Document) (any, error) {
		g, err := graphOf(doc, cmd.Graph)
		if err != nil {
			return nil, err
		}
		if err := g.Disconnect(params.Source.NodeID, params.Source.Port,
			params.Destination.NodeID, params.Destination.Port); err != nil {
			return nil, err
		}
		return map[string]any{"disconnected": true}, nil
	})
}

func (s *ScriptService) handleInsertReroute(ctx context.Context, cmd Command) (any, error) {
	var params portPair
	if err := decodeParams(cmd, &params); err != nil {
		return nil, err
	}
	if err := params.validate(cmd.Action); err != nil {
		return nil, err
	}
	return s.withDocument(ctx, cmd.DocumentID, func(doc *scriptgraph.Document) (any, error) {
		g, err := graphOf(doc, cmd.Graph)
		if err != nil {
			return nil, err
		}
		return nodeops.InsertPassThrough(g, params.Source, params.Destination)
	})
}

func (s *ScriptService) handleCreateReroutePath(ctx context.Context, cmd Command) (any, error) {
	var params struct {
		portPair
		Waypoints []scriptgraph.Position `json:"waypoints"`
	}
	if err := decodeParams(cmd, &params); err != nil {
		return nil, err
	}
	if err := params.validate(cmd.Action); err != nil {
		return nil, err
	}
	return s.withDocument(ctx, cmd.DocumentID, func(doc *scriptgraph.Document) (any, error) {
		g, err := graphOf(doc, cmd.Graph)
		if err != nil {
			return nil, err
		}
		knots, err := nodeops.CreateReroutePath(g, params.Source, params.Destination,
			params.Waypoints, s.Logger())
		if err != nil {
			return nil, err
		}
		return map[string]any{"knots": knots}, nil
	})
}

func (s *ScriptService) handleCreateDocument(ctx context.Context, cmd Command) (any, error) {
	var params struct {
		ID            string              `json:"id"`
		Name          string              `json:"name"`
		GeneratedType scriptgraph.TypeRef `json:"generated_type"`
		ParentType    scriptgraph.TypeRef `json:"parent_type"`
		Graphs        []string            `json:"graphs"`
	}
	if err := decodeParams(cmd, &params); err != nil {
		return nil, err
	}
	if params.ID == "" || params.Name == "" {
		return nil, errors.WrapInvalid(
			fmt.Errorf("id and name are required"),
			"ScriptService", cmd.Action, "params validation")
	}
	if len(params.Graphs) == 0 {
		params.Graphs = []string{"EventGraph"}
	}

	doc := &scriptgraph.Document{
		ID:            params.ID,
		Name:          params.Name,
		GeneratedType: params.GeneratedType,
		ParentType:    params.ParentType,
	}
	for i, name := range params.Graphs {
		doc.Graphs = append(doc.Graphs, scriptgraph.NewGraph(fmt.Sprintf("%s-g%d", params.ID, i+1), name))
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	s.docsMu.Lock()
	defer s.docsMu.Unlock()
	if _, exists := s.docs[doc.ID]; exists {
		return nil, errors.WrapInvalidState(
			fmt.Errorf("document %s is already open", doc.ID),
			"ScriptService", cmd.Action, "document creation")
	}
	if s.deps.Store != nil {
		if err := s.deps.Store.Create(ctx, doc); err != nil {
			return nil, err
		}
	}
	s.docs[doc.ID] = &openDocument{doc: doc}
	s.updateDocumentGauge()

	return map[string]any{
		"id":     doc.ID,
		"name":   doc.Name,
		"graphs": params.Graphs,
	}, nil
}

func (s *ScriptService) handleListDocuments(ctx context.Context, _ Command) (any, error) {
	if s.deps.Store != nil {
		summaries, err := s.deps.Store.List(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"documents": summaries}, nil
	}

	// No store: list what is open in memory
	s.docsMu.Lock()
	defer s.docsMu.Unlock()
	summaries := []docstore.Summary{}
	for _, od := range s.docs {
		od.mu.Lock()
		nodes := 0
		for _, g := range od.doc.Graphs {
			nodes += len(g.Nodes)
		}
		summaries = append(summaries, docstore.Summary{
			ID:       od.doc.ID,
			Name:     od.doc.Name,
			Graphs:   len(od.doc.Graphs),
			Nodes:    nodes,
			Revision: od.doc.Revision,
		})
		od.mu.Unlock()
	}
	return map[string]any{"documents": summaries}, nil
}

// Reroute key re-exported for clients that address the synthetic kind
// by key rather than kind name
const RerouteKey = descriptor.RerouteKey
