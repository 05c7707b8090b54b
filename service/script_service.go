package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360/scriptbridge/catalog"
	"github.com/c360/scriptbridge/config"
	"github.com/c360/scriptbridge/descriptor"
	"github.com/c360/scriptbridge/discovery"
	"github.com/c360/scriptbridge/errors"
	"github.com/c360/scriptbridge/nodeops"
	"github.com/c360/scriptbridge/scriptgraph"
)

// Command is one request on the command channel. Params is decoded per
// action; DocumentID and Graph address the target for actions that
// mutate or read a document.
type Command struct {
	Action     string          `json:"action"`
	RequestID  string          `json:"request_id,omitempty"`
	DocumentID string          `json:"document_id,omitempty"`
	Graph      string          `json:"graph,omitempty"`
	Params     json.RawMessage `json:"params,omitempty"`
}

// Response is the uniform reply envelope. Error and Suggestion are only
// set on failure; Suggestion tells the client what to try instead.
type Response struct {
	Success    bool   `json:"success"`
	RequestID  string `json:"request_id,omitempty"`
	Error      string `json:"error,omitempty"`
	ErrorClass string `json:"error_class,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Data       any    `json:"data,omitempty"`
}

// openDocument pairs a document with the mutex serializing access to
// it. NATS and HTTP deliver concurrently; graph mutation is not safe
// under that concurrency without this.
type openDocument struct {
	mu  sync.Mutex
	doc *scriptgraph.Document
}

// ScriptService dispatches catalog and graph commands against open
// script documents
type ScriptService struct {
	*BaseService
	deps    Dependencies
	cfg     *config.Config
	cache   *descriptor.Cache
	engine  *discovery.Engine
	creator *nodeops.Creator

	docsMu sync.Mutex
	docs   map[string]*openDocument
}

// NewScriptService wires the engine together from its dependencies
func NewScriptService(cfg *config.Config, deps Dependencies) (*ScriptService, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	if deps.Filter == nil {
		deps.Filter = catalog.DefaultContextFilter(deps.Types)
	}

	base := NewBaseService(cfg.Service.Name,
		WithNATS(deps.NATSClient),
		WithMetrics(deps.MetricsRegistry),
		WithLogger(deps.Logger),
	)

	cache := descriptor.NewCache()
	if deps.MetricsRegistry != nil {
		core := deps.MetricsRegistry.CoreMetrics()
		cache.SetEvictionHook(func(string) { core.RecordCacheEviction() })
	}

	s := &ScriptService{
		BaseService: base,
		deps:        deps,
		cfg:         cfg,
		cache:       cache,
		engine:      discovery.NewEngine(deps.Catalog, cache),
		creator:     nodeops.NewCreator(deps.Catalog, cache, deps.Types, deps.Filter, base.Logger()),
		docs:        make(map[string]*openDocument),
	}
	return s, nil
}

// Start starts the base lifecycle and subscribes the command subject
// when a NATS client is present
func (s *ScriptService) Start(ctx context.Context) error {
	if err := s.BaseService.Start(ctx); err != nil {
		return err
	}
	if s.deps.NATSClient != nil {
		if _, err := s.deps.NATSClient.Subscribe(s.cfg.Service.CommandSubject, s.handleNATSMessage); err != nil {
			return err
		}
		s.Logger().Info("command subject subscribed", "subject", s.cfg.Service.CommandSubject)
	}
	return nil
}

// handleNATSMessage decodes a command from a NATS request and replies
// with the response envelope
func (s *ScriptService) handleNATSMessage(msg *nats.Msg) {
	var cmd Command
	if err := json.Unmarshal(msg.Data, &cmd); err != nil {
		s.respond(msg, Response{
			Success:    false,
			Error:      fmt.Sprintf("malformed command: %v", err),
			ErrorClass: errors.ErrorInvalid.String(),
		})
		return
	}
	s.respond(msg, s.Dispatch(context.Background(), cmd))
}

func (s *ScriptService) respond(msg *nats.Msg, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.Logger().Error("encode response", "error", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		s.Logger().Warn("respond to command", "error", err)
	}
}

// Dispatch routes one command to its handler. It never panics outward:
// a handler panic becomes an internal-error response, so one bad
// command cannot take the channel down.
func (s *ScriptService) Dispatch(ctx context.Context, cmd Command) (resp Response) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.Logger().Error("command handler panicked", "action", cmd.Action, "panic", r)
			resp = Response{
				Success:    false,
				RequestID:  cmd.RequestID,
				Error:      fmt.Sprintf("internal error handling %s", cmd.Action),
				ErrorClass: errors.ErrorInternal.String(),
			}
		}
		s.recordCommand(cmd.Action, resp.Success, time.Since(start))
	}()

	data, err := s.route(ctx, cmd)
	if err != nil {
		resp := s.errorResponse(cmd, err)
		// A handler may fail with a partial-result breakdown attached
		resp.Data = data
		return resp
	}
	return Response{Success: true, RequestID: cmd.RequestID, Data: data}
}

func (s *ScriptService) route(ctx context.Context, cmd Command) (any, error) {
	switch cmd.Action {
	case "discover_nodes":
		return s.handleDiscoverNodes(ctx, cmd)
	case "create_node":
		return s.handleCreateNode(ctx, cmd)
	case "apply_pin_defaults":
		return s.handleApplyDefaults(ctx, cmd)
	case "get_node":
		return s.handleGetNode(ctx, cmd)
	case "connect_ports":
		return s.handleConnectPorts(ctx, cmd)
	case "disconnect_ports":
		return s.handleDisconnectPorts(ctx, cmd)
	case "insert_reroute":
		return s.handleInsertReroute(ctx, cmd)
	case "create_reroute_path":
		return s.handleCreateReroutePath(ctx, cmd)
	case "create_document":
		return s.handleCreateDocument(ctx, cmd)
	case "list_documents":
		return s.handleListDocuments(ctx, cmd)
	default:
		err := errors.WrapUnsupported(
			fmt.Errorf("unknown action %q", cmd.Action),
			"ScriptService", "Dispatch", "action routing")
		return nil, errors.WithSuggestion(err,
			"supported actions: discover_nodes, create_node, apply_pin_defaults, get_node, "+
				"connect_ports, disconnect_ports, insert_reroute, create_reroute_path, "+
				"create_document, list_documents")
	}
}

func (s *ScriptService) errorResponse(cmd Command, err error) Response {
	return Response{
		Success:    false,
		RequestID:  cmd.RequestID,
		Error:      err.Error(),
		ErrorClass: errors.Classify(err).String(),
		Suggestion: errors.SuggestionOf(err),
	}
}

func (s *ScriptService) recordCommand(action string, success bool, elapsed time.Duration) {
	if s.deps.MetricsRegistry == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "error"
	}
	s.deps.MetricsRegistry.CoreMetrics().RecordCommand(action, outcome, elapsed)
}

// openDoc returns the open document for an ID, loading it from the
// store on first touch
func (s *ScriptService) openDoc(ctx context.Context, id string) (*openDocument, error) {
	if id == "" {
		return nil, errors.WrapInvalid(
			fmt.Errorf("document_id is required"),
			"ScriptService", "openDoc", "document addressing")
	}

	s.docsMu.Lock()
	defer s.docsMu.Unlock()
	if od, ok := s.docs[id]; ok {
		return od, nil
	}

	if s.deps.Store == nil {
		err := errors.WrapNotFound(
			fmt.Errorf("%w: %s", errors.ErrDocumentNotFound, id),
			"ScriptService", "openDoc", "document lookup")
		return nil, errors.WithSuggestion(err,
			"call create_document first, or list_documents to see what exists")
	}
	doc, err := s.deps.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	od := &openDocument{doc: doc}
	s.docs[id] = od
	s.updateDocumentGauge()
	return od, nil
}

// withDocument runs fn holding the document's mutex and persists the
// document afterwards when a store is configured
func (s *ScriptService) withDocument(ctx context.Context, id string, fn func(*scriptgraph.Document) (any, error)) (any, error) {
	od, err := s.openDoc(ctx, id)
	if err != nil {
		return nil, err
	}

	od.mu.Lock()
	defer od.mu.Unlock()
	data, err := fn(od.doc)
	if err != nil && data == nil {
		return nil, err
	}
	// A non-nil result alongside an error means fn partially mutated the
	// document; those mutations still persist.
	if s.deps.Store != nil {
		if uerr := s.deps.Store.Update(ctx, od.doc); uerr != nil {
			return nil, uerr
		}
	}
	return data, err
}

// graphOf resolves the command's graph reference, defaulting to the
// document's first graph
func graphOf(doc *scriptgraph.Document, ref string) (*scriptgraph.Graph, error) {
	if ref != "" {
		return doc.Graph(ref)
	}
	if len(doc.Graphs) == 0 {
		return nil, errors.WrapNotFound(
			fmt.Errorf("document %s has no graphs: %w", doc.ID, errors.ErrGraphNotFound),
			"ScriptService", "graphOf", "graph lookup")
	}
	return doc.Graphs[0], nil
}

func (s *ScriptService) updateDocumentGauge() {
	if s.deps.MetricsRegistry != nil {
		s.deps.MetricsRegistry.CoreMetrics().OpenDocuments.Set(float64(len(s.docs)))
	}
}
