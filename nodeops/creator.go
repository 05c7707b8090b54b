// Package nodeops implements the mutating half of the engine: node
// creation with kind-specific configuration, port default application,
// and pass-through (reroute) insertion. Everything here operates on an
// in-memory document the caller has already locked.
package nodeops

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/c360/scriptbridge/catalog"
	"github.com/c360/scriptbridge/descriptor"
	"github.com/c360/scriptbridge/errors"
	"github.com/c360/scriptbridge/resolve"
	"github.com/c360/scriptbridge/scriptgraph"
)

// Configuration keys recognized by CreateAndConfigure
const (
	ConfigSpawnClass  = "class_to_spawn"
	ConfigOwnerClass  = "owner_class"
	ConfigMemberScope = "member_scope"
	ConfigIsLocal     = "is_local"
	ConfigTargetType  = "target_type"
)

// CreateRequest describes one node to create and configure
type CreateRequest struct {
	// NodeType is a spawner key or bare name, resolved through the
	// resolution pipeline
	NodeType string `json:"node_type"`
	// KindName optionally pins the node kind
	KindName string `json:"node_kind,omitempty"`
	// OwnerHint optionally names the owning type for bare-name requests
	OwnerHint string `json:"owner_class,omitempty"`
	// Position places the node on the canvas
	Position scriptgraph.Position `json:"position"`
	// Config carries kind-specific configuration values
	Config map[string]any `json:"config,omitempty"`
}

// CreateResult reports a successful creation
type CreateResult struct {
	Node *scriptgraph.Node `json:"node"`
	// Key is the canonical spawner key the node resolved through, empty
	// for synthetic kinds
	Key string `json:"spawner_key,omitempty"`
	// Tier names the resolution tier that found the spawner
	Tier string `json:"resolution_tier,omitempty"`
}

// Creator resolves spawners and instantiates configured nodes
type Creator struct {
	provider catalog.Provider
	cache    *descriptor.Cache
	types    *catalog.TypeSystem
	filter   catalog.ContextFilter
	logger   *slog.Logger
}

// NewCreator builds a Creator over the given catalog surfaces. A nil
// logger discards.
func NewCreator(provider catalog.Provider, cache *descriptor.Cache, types *catalog.TypeSystem,
	filter catalog.ContextFilter, logger *slog.Logger) *Creator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Creator{provider: provider, cache: cache, types: types, filter: filter, logger: logger}
}

// CreateAndConfigure resolves the requested spawner, instantiates its
// node on the graph, and applies the kind-specific configuration. On a
// configuration error the half-built node is removed again, so the
// graph never keeps a partially configured node.
func (c *Creator) CreateAndConfigure(doc *scriptgraph.Document, g *scriptgraph.Graph,
	req CreateRequest) (CreateResult, error) {

	if isRerouteRequest(req) {
		node := scriptgraph.NewRerouteNode(req.Position)
		if err := g.AddNode(node); err != nil {
			return CreateResult{}, err
		}
		return CreateResult{Node: node, Tier: "synthetic"}, nil
	}

	res, err := resolve.Resolve(resolve.Request{
		Key:       req.NodeType,
		KindName:  req.KindName,
		OwnerHint: req.OwnerHint,
	}, resolve.Env{
		Provider: c.provider,
		Cache:    c.cache,
		Document: doc,
		Filter:   c.filter,
		Types:    c.types,
	})
	if err != nil {
		return CreateResult{}, err
	}

	node, err := res.Entry.Invoke(g, req.Position)
	if err != nil {
		return CreateResult{}, err
	}

	if err := c.configure(doc, node, req.Config); err != nil {
		_ = g.RemoveNode(node.ID)
		return CreateResult{}, err
	}
	return CreateResult{Node: node, Key: res.Key, Tier: res.Tier}, nil
}

func isRerouteRequest(req CreateRequest) bool {
	return strings.EqualFold(req.NodeType, descriptor.RerouteKey) ||
		req.KindName == string(scriptgraph.KindReroute)
}

// configure applies kind-specific configuration and rebuilds ports.
// Configuration happens before reconstruction, so the port shape the
// caller sees already reflects every choice made here.
func (c *Creator) configure(doc *scriptgraph.Document, node *scriptgraph.Node, cfg map[string]any) error {
	switch node.Kind {
	case scriptgraph.KindFunctionCall:
		if err := c.configureFunction(doc, node, cfg); err != nil {
			return err
		}
	case scriptgraph.KindVariableGet, scriptgraph.KindVariableSet:
		c.configureVariable(doc, node, cfg)
	case scriptgraph.KindCast:
		if err := c.configureCast(node, cfg); err != nil {
			return err
		}
	}
	node.ReconstructPorts()
	return nil
}

func (c *Creator) configureFunction(doc *scriptgraph.Document, node *scriptgraph.Node, cfg map[string]any) error {
	fb := node.Function
	if fb == nil {
		return nil
	}

	// Instance members called on the document's own type hide the self
	// pin; anything else expects an explicit target.
	if !fb.IsStatic {
		fb.Member.SelfContext = c.selfContext(doc, fb.Member.OwnerType)
	}

	if raw, ok := cfg[ConfigSpawnClass]; ok {
		spec, ok := raw.(string)
		if !ok || spec == "" {
			return errors.WrapInvalid(
				fmt.Errorf("%w: %s must be a non-empty string", errors.ErrInvalidConfig, ConfigSpawnClass),
				"Creator", "CreateAndConfigure", "spawn class validation")
		}
		td, err := c.types.Resolve(spec)
		if err != nil {
			return err
		}
		node.SpawnClass = td.Ref
	}
	return nil
}

// configureVariable applies the owner hints. Hint failures degrade to
// self-context access rather than failing creation: a mis-typed owner
// still yields a usable node the client can rewire.
func (c *Creator) configureVariable(doc *scriptgraph.Document, node *scriptgraph.Node, cfg map[string]any) {
	vb := node.Variable
	if vb == nil {
		return
	}

	if local, ok := cfg[ConfigIsLocal].(bool); ok && local {
		vb.IsLocal = true
		return
	}

	if spec, ok := cfg[ConfigOwnerClass].(string); ok && spec != "" {
		td, err := c.types.Resolve(spec)
		if err != nil {
			c.logger.Warn("owner class hint did not resolve, falling back to self context",
				"owner_class", spec, "variable", vb.Member.MemberName, "error", err)
			vb.Member.SelfContext = true
			return
		}
		vb.Member.OwnerType = td.Ref
		vb.Member.SelfContext = false
		return
	}

	if scope, ok := cfg[ConfigMemberScope].(string); ok && strings.EqualFold(scope, "external") {
		vb.Member.SelfContext = false
		return
	}

	vb.Member.SelfContext = c.selfContext(doc, vb.Member.OwnerType)
}

func (c *Creator) configureCast(node *scriptgraph.Node, cfg map[string]any) error {
	spec, ok := cfg[ConfigTargetType].(string)
	if !ok || spec == "" {
		// The entry already carries a target; nothing to override
		return nil
	}
	td, err := c.types.Resolve(spec)
	if err != nil {
		return err
	}
	node.CastTarget = td.Ref
	return nil
}

// selfContext reports whether the document's generated type can access
// the member without an explicit target
func (c *Creator) selfContext(doc *scriptgraph.Document, owner scriptgraph.TypeRef) bool {
	if doc == nil || owner.IsZero() {
		return false
	}
	if doc.GeneratedType.Equal(owner) {
		return true
	}
	return c.types != nil && c.types.IsA(doc.GeneratedType, owner)
}
