package catalog

import (
	"sync/atomic"

	"github.com/c360/scriptbridge/scriptgraph"
)

// CallableMember describes a callable member surfaced by host reflection
type CallableMember struct {
	Name string `json:"name"`
	// Owner is the declaring type. It may be zero when reflection could
	// not surface a declaration; extraction then falls back to the
	// entry's outer scope.
	Owner    scriptgraph.TypeRef     `json:"owner,omitzero"`
	Module   string                  `json:"module,omitempty"`
	IsStatic bool                    `json:"is_static,omitempty"`
	IsConst  bool                    `json:"is_const,omitempty"`
	IsPure   bool                    `json:"is_pure,omitempty"`
	Params   []scriptgraph.ParamDecl `json:"params,omitempty"`
}

// VariableSpec describes a variable accessor entry
type VariableSpec struct {
	Name         string              `json:"name"`
	DeclaredType scriptgraph.PinType `json:"declared_type"`
	Owner        scriptgraph.TypeRef `json:"owner,omitzero"`
	Setter       bool                `json:"setter,omitempty"`
}

// CastSpec describes a type-cast entry
type CastSpec struct {
	Target scriptgraph.TypeRef `json:"target"`
}

// GenericSpec describes an entry with no richer classification (event
// signatures and other host-contributed node shapes)
type GenericSpec struct {
	Params  []scriptgraph.ParamDecl `json:"params,omitempty"`
	ExecIn  bool                    `json:"exec_in,omitempty"`
	ExecOut bool                    `json:"exec_out,omitempty"`
}

// EntrySpec is the tagged union of kind-specific entry metadata. Exactly
// one payload matching Kind is populated; everything else is nil.
type EntrySpec struct {
	Kind     scriptgraph.NodeKind `json:"kind"`
	Function *CallableMember      `json:"function,omitempty"`
	Variable *VariableSpec        `json:"variable,omitempty"`
	Cast     *CastSpec            `json:"cast,omitempty"`
	Generic  *GenericSpec         `json:"generic,omitempty"`
}

// EntryMeta is the presentation metadata of a catalog entry. None of it
// participates in identity.
type EntryMeta struct {
	DisplayName string   `json:"display_name"`
	Category    string   `json:"category,omitempty"`
	Tooltip     string   `json:"tooltip,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// Entry is one factory in the host catalog: an opaque, host-owned object
// capable of producing one node instance of one node class. Entries are
// referenced weakly; every use must be preceded by an Alive check (or go
// through Handle).
type Entry interface {
	Validatable

	Meta() EntryMeta
	Spec() EntrySpec

	// OuterScope is the registry scope the entry was contributed under.
	// It serves as the owning-type fallback when a callable member
	// carries no declaration.
	OuterScope() scriptgraph.TypeRef

	// Invoke produces this entry's node inside the target graph at the
	// given position. The graph owns the returned node.
	Invoke(g *scriptgraph.Graph, pos scriptgraph.Position) (*scriptgraph.Node, error)
}

// Provider gives read access to the host's global node catalog: an
// iterable collection of opaque factory entries. Implementations must
// tolerate entries dying mid-walk.
type Provider interface {
	// Walk calls fn for every live entry until fn returns false
	Walk(fn func(Entry) bool)
	// Len returns the number of live entries
	Len() int
}

// entry is the in-memory Entry implementation used by Registry
type entry struct {
	meta  EntryMeta
	spec  EntrySpec
	outer scriptgraph.TypeRef
	alive atomic.Bool
}

func newEntry(meta EntryMeta, spec EntrySpec, outer scriptgraph.TypeRef) *entry {
	e := &entry{meta: meta, spec: spec, outer: outer}
	e.alive.Store(true)
	return e
}

func (e *entry) Alive() bool { return e.alive.Load() }

func (e *entry) Meta() EntryMeta { return e.meta }

func (e *entry) Spec() EntrySpec { return e.spec }

func (e *entry) OuterScope() scriptgraph.TypeRef { return e.outer }

func (e *entry) invalidate() { e.alive.Store(false) }

// Invoke builds the node this entry describes and places it on the graph
func (e *entry) Invoke(g *scriptgraph.Graph, pos scriptgraph.Position) (*scriptgraph.Node, error) {
	node := scriptgraph.NewNode(e.spec.Kind, e.meta.DisplayName, pos)

	switch e.spec.Kind {
	case scriptgraph.KindFunctionCall:
		member := e.spec.Function
		node.Function = &scriptgraph.FunctionBinding{
			Member:   scriptgraph.MemberRef{MemberName: member.Name, OwnerType: e.ownerOrOuter(member.Owner)},
			Module:   member.Module,
			IsStatic: member.IsStatic,
			IsConst:  member.IsConst,
			IsPure:   member.IsPure,
			Params:   member.Params,
		}
	case scriptgraph.KindVariableGet, scriptgraph.KindVariableSet:
		v := e.spec.Variable
		node.Variable = &scriptgraph.VariableBinding{
			Member:       scriptgraph.MemberRef{MemberName: v.Name, OwnerType: v.Owner},
			DeclaredType: v.DeclaredType,
		}
	case scriptgraph.KindCast:
		node.CastTarget = e.spec.Cast.Target
	case scriptgraph.KindGeneric:
		if gs := e.spec.Generic; gs != nil {
			node.Custom = &scriptgraph.CustomBinding{
				Params:  gs.Params,
				ExecIn:  gs.ExecIn,
				ExecOut: gs.ExecOut,
			}
		}
	}

	node.ReconstructPorts()
	if err := g.AddNode(node); err != nil {
		return nil, err
	}
	return node, nil
}

func (e *entry) ownerOrOuter(owner scriptgraph.TypeRef) scriptgraph.TypeRef {
	if owner.IsZero() {
		return e.outer
	}
	return owner
}
