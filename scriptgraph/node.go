package scriptgraph

import (
	"fmt"

	"github.com/google/uuid"
)

// NodeKind classifies a script node by what configures it. The kind is
// decided once, when the node's catalog entry is classified, and drives
// a single switch at configuration and port-reconstruction time.
type NodeKind string

// Node kinds
const (
	KindFunctionCall NodeKind = "function_call"
	KindVariableGet  NodeKind = "variable_get"
	KindVariableSet  NodeKind = "variable_set"
	KindCast         NodeKind = "cast"
	KindReroute      NodeKind = "reroute"
	KindGeneric      NodeKind = "generic"
)

// Valid reports whether the kind is one this system knows how to configure
func (k NodeKind) Valid() bool {
	switch k {
	case KindFunctionCall, KindVariableGet, KindVariableSet, KindCast, KindReroute, KindGeneric:
		return true
	default:
		return false
	}
}

// MemberRef binds a node to a member of some owning type. SelfContext is
// true when the member is accessed on the owning document's own generated
// type rather than an explicit external instance.
type MemberRef struct {
	MemberName  string  `json:"member_name"`
	OwnerType   TypeRef `json:"owner_type,omitzero"`
	SelfContext bool    `json:"self_context,omitempty"`
}

// ParamDecl describes one parameter of a callable member, as surfaced by
// host reflection. Output-direction params cover both out-parameters and
// return values.
type ParamDecl struct {
	Name         string    `json:"name"`
	Type         PinType   `json:"type"`
	Direction    Direction `json:"direction"`
	DefaultValue string    `json:"default_value,omitempty"`
	Tooltip      string    `json:"tooltip,omitempty"`
	Hidden       bool      `json:"hidden,omitempty"`
	Advanced     bool      `json:"advanced,omitempty"`
}

// FunctionBinding configures a function-call node
type FunctionBinding struct {
	Member   MemberRef   `json:"member"`
	Module   string      `json:"module,omitempty"`
	IsStatic bool        `json:"is_static,omitempty"`
	IsConst  bool        `json:"is_const,omitempty"`
	IsPure   bool        `json:"is_pure,omitempty"`
	Params   []ParamDecl `json:"params,omitempty"`
}

// VariableBinding configures a variable accessor node
type VariableBinding struct {
	Member       MemberRef `json:"member"`
	DeclaredType PinType   `json:"declared_type"`
	IsLocal      bool      `json:"is_local,omitempty"`
}

// CustomBinding configures a generic node whose port shape comes straight
// from its catalog entry (events and other kinds with no richer
// classification).
type CustomBinding struct {
	Params  []ParamDecl `json:"params,omitempty"`
	ExecIn  bool        `json:"exec_in,omitempty"`
	ExecOut bool        `json:"exec_out,omitempty"`
}

// Node is one placed, executable unit in a graph. The graph owns the
// node; this system creates it, positions it, and mutates the
// kind-specific configuration below, after which ReconstructPorts brings
// the port list back in line with the configuration.
type Node struct {
	ID       string   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Title    string   `json:"title"`
	Position Position `json:"position"`
	Ports    []*Port  `json:"ports"`

	// Kind-specific configuration; at most one of these is meaningful
	// for any given kind.
	Function   *FunctionBinding `json:"function,omitempty"`
	Variable   *VariableBinding `json:"variable,omitempty"`
	CastTarget TypeRef          `json:"cast_target,omitzero"`
	SpawnClass TypeRef          `json:"spawn_class,omitzero"`
	Custom     *CustomBinding   `json:"custom,omitempty"`
}

// NewNode creates an unconfigured node of the given kind
func NewNode(kind NodeKind, title string, pos Position) *Node {
	return &Node{
		ID:       uuid.NewString(),
		Kind:     kind,
		Title:    title,
		Position: pos,
	}
}

// NewRerouteNode creates a pass-through node: one wildcard input, one
// wildcard output, no type constraint until wired.
func NewRerouteNode(pos Position) *Node {
	n := NewNode(KindReroute, "Reroute", pos)
	n.ReconstructPorts()
	return n
}

// Port returns the first port with the given name, or nil
func (n *Node) Port(name string) *Port {
	for _, p := range n.Ports {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// InputPort returns the input port with the given name, or nil
func (n *Node) InputPort(name string) *Port {
	for _, p := range n.Ports {
		if p.Name == name && p.Direction == DirectionInput {
			return p
		}
	}
	return nil
}

// OutputPort returns the output port with the given name, or nil
func (n *Node) OutputPort(name string) *Port {
	for _, p := range n.Ports {
		if p.Name == name && p.Direction == DirectionOutput {
			return p
		}
	}
	return nil
}

// ReconstructPorts rebuilds the node's port list from its current
// configuration. Existing connections and default values survive for
// ports that still exist under the same name and direction; ports the
// new configuration no longer produces are dropped along with their
// links. This is the final step of every configuration branch, so port
// shape always reflects the just-applied configuration.
func (n *Node) ReconstructPorts() {
	fresh := n.buildPorts()
	if fresh == nil {
		// Kinds with no shape rule keep whatever the entry allocated.
		return
	}

	type key struct {
		name string
		dir  Direction
	}
	old := make(map[key]*Port, len(n.Ports))
	for _, p := range n.Ports {
		old[key{p.Name, p.Direction}] = p
	}
	for _, p := range fresh {
		if prev, ok := old[key{p.Name, p.Direction}]; ok {
			p.Links = prev.Links
			if prev.DefaultValue != "" && p.DefaultValue == "" {
				p.DefaultValue = prev.DefaultValue
			}
		}
	}
	n.Ports = fresh
}

// buildPorts returns the port list the current configuration implies, or
// nil when the kind has no shape rule of its own.
func (n *Node) buildPorts() []*Port {
	switch n.Kind {
	case KindFunctionCall:
		if n.Function == nil {
			return nil
		}
		return n.buildFunctionPorts()
	case KindVariableGet:
		if n.Variable == nil {
			return nil
		}
		return n.buildVariablePorts(false)
	case KindVariableSet:
		if n.Variable == nil {
			return nil
		}
		return n.buildVariablePorts(true)
	case KindCast:
		return n.buildCastPorts()
	case KindReroute:
		return []*Port{
			{Name: "input", Direction: DirectionInput, Type: WildcardType()},
			{Name: "output", Direction: DirectionOutput, Type: WildcardType()},
		}
	case KindGeneric:
		if n.Custom == nil {
			return nil
		}
		return n.buildCustomPorts()
	default:
		return nil
	}
}

func (n *Node) buildFunctionPorts() []*Port {
	fb := n.Function
	var ports []*Port

	if !fb.IsPure {
		ports = append(ports,
			&Port{Name: "execute", Direction: DirectionInput, Type: ExecType()},
			&Port{Name: "then", Direction: DirectionOutput, Type: ExecType()},
		)
	}
	if !fb.IsStatic {
		ports = append(ports, &Port{
			Name:      "self",
			Direction: DirectionInput,
			Type:      ObjectType(fb.Member.OwnerType),
			Tooltip:   fmt.Sprintf("Target of type %s", fb.Member.OwnerType.Display()),
			Hidden:    fb.Member.SelfContext,
		})
	}
	for _, param := range fb.Params {
		ports = append(ports, portFromParam(param))
	}

	// A spawn-class choice reshapes the node: the class input carries the
	// chosen type as its default, and the result output takes that type.
	if !n.SpawnClass.IsZero() {
		if class := findPort(ports, "class", DirectionInput); class != nil {
			class.DefaultValue = n.SpawnClass.String()
		} else {
			ports = append(ports, &Port{
				Name:         "class",
				Direction:    DirectionInput,
				Type:         ObjectType(n.SpawnClass),
				DefaultValue: n.SpawnClass.String(),
			})
		}
		if ret := findPort(ports, "return value", DirectionOutput); ret != nil {
			ret.Type = ObjectType(n.SpawnClass)
		} else {
			ports = append(ports, &Port{
				Name:      "return value",
				Direction: DirectionOutput,
				Type:      ObjectType(n.SpawnClass),
			})
		}
	}

	return ports
}

func (n *Node) buildVariablePorts(setter bool) []*Port {
	vb := n.Variable
	name := vb.Member.MemberName
	var ports []*Port

	if setter {
		ports = append(ports,
			&Port{Name: "execute", Direction: DirectionInput, Type: ExecType()},
			&Port{Name: "then", Direction: DirectionOutput, Type: ExecType()},
		)
	}
	if !vb.Member.SelfContext && !vb.IsLocal {
		ports = append(ports, &Port{
			Name:      "target",
			Direction: DirectionInput,
			Type:      ObjectType(vb.Member.OwnerType),
			Tooltip:   fmt.Sprintf("Instance owning %s", name),
		})
	}
	if setter {
		ports = append(ports,
			&Port{Name: name, Direction: DirectionInput, Type: vb.DeclaredType},
			&Port{Name: "output", Direction: DirectionOutput, Type: vb.DeclaredType,
				Tooltip: "Value of the variable after assignment"},
		)
	} else {
		ports = append(ports, &Port{Name: name, Direction: DirectionOutput, Type: vb.DeclaredType})
	}
	return ports
}

func (n *Node) buildCastPorts() []*Port {
	out := &Port{Name: "as", Direction: DirectionOutput, Type: ObjectType(n.CastTarget)}
	if !n.CastTarget.IsZero() {
		out.Name = "as " + n.CastTarget.Display()
	}
	return []*Port{
		{Name: "execute", Direction: DirectionInput, Type: ExecType()},
		{Name: "object", Direction: DirectionInput, Type: ObjectType(TypeRef{})},
		{Name: "then", Direction: DirectionOutput, Type: ExecType()},
		{Name: "cast failed", Direction: DirectionOutput, Type: ExecType()},
		out,
	}
}

func (n *Node) buildCustomPorts() []*Port {
	cb := n.Custom
	var ports []*Port
	if cb.ExecIn {
		ports = append(ports, &Port{Name: "execute", Direction: DirectionInput, Type: ExecType()})
	}
	if cb.ExecOut {
		ports = append(ports, &Port{Name: "then", Direction: DirectionOutput, Type: ExecType()})
	}
	for _, param := range cb.Params {
		ports = append(ports, portFromParam(param))
	}
	return ports
}

func portFromParam(param ParamDecl) *Port {
	return &Port{
		Name:         param.Name,
		Direction:    param.Direction,
		Type:         param.Type,
		DefaultValue: param.DefaultValue,
		Tooltip:      param.Tooltip,
		Hidden:       param.Hidden,
		Advanced:     param.Advanced,
	}
}

func findPort(ports []*Port, name string, dir Direction) *Port {
	for _, p := range ports {
		if p.Name == name && p.Direction == dir {
			return p
		}
	}
	return nil
}
