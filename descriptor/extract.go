package descriptor

import (
	"github.com/c360/scriptbridge/catalog"
	"github.com/c360/scriptbridge/scriptgraph"
)

// Extract produces a descriptor for one catalog entry. It never fails:
// on any metadata-extraction gap it degrades the node kind to generic
// and falls back to the display name as the spawner key, because a
// classification failure must never block discovery.
//
// contextDocument anchors variable externality and may be nil when no
// document context exists; an owned variable is then treated as
// external.
func Extract(e catalog.Entry, contextDocument *scriptgraph.Document) SpawnerDescriptor {
	meta := e.Meta()
	spec := e.Spec()

	d := SpawnerDescriptor{
		SpawnerKey:  meta.DisplayName,
		DisplayName: meta.DisplayName,
		Category:    meta.Category,
		Tooltip:     meta.Tooltip,
		Keywords:    meta.Keywords,
		NodeKind:    scriptgraph.KindGeneric,
	}

	switch spec.Kind {
	case scriptgraph.KindFunctionCall:
		extractFunction(&d, e, spec.Function)
	case scriptgraph.KindVariableGet, scriptgraph.KindVariableSet:
		extractVariable(&d, spec.Kind, spec.Variable, contextDocument)
	case scriptgraph.KindCast:
		if spec.Cast != nil && !spec.Cast.Target.IsZero() {
			d.NodeKind = scriptgraph.KindCast
			d.Cast = &CastMetadata{TargetType: spec.Cast.Target.String()}
		}
	case scriptgraph.KindGeneric:
		// Already the degraded default; nothing further to classify.
	}

	d.Ports = previewPorts(spec, d, contextDocument)
	d.ExpectedPortCount = len(d.Ports)

	if d.SpawnerKey == "" {
		// Last-resort identity so the cache invariant holds even for
		// entries with no display metadata at all.
		d.SpawnerKey = string(d.NodeKind)
	}
	return d
}

func extractFunction(d *SpawnerDescriptor, e catalog.Entry, member *catalog.CallableMember) {
	if member == nil || member.Name == "" {
		return
	}
	// Owning type comes from the member's declaration; absent that, the
	// entry's outer scope. If neither exists the entry stays generic --
	// a synthetic owner would fabricate an identity that can never be
	// re-resolved.
	owner := member.Owner
	if owner.IsZero() {
		owner = e.OuterScope()
	}
	if owner.IsZero() {
		return
	}

	d.NodeKind = scriptgraph.KindFunctionCall
	d.SpawnerKey = owner.Display() + "::" + member.Name
	d.Function = &FunctionMetadata{
		MemberName: member.Name,
		OwnerType:  owner.Display(),
		OwnerPath:  owner.Path,
		Module:     member.Module,
		IsStatic:   member.IsStatic,
		IsConst:    member.IsConst,
		IsPure:     member.IsPure,
	}
}

func extractVariable(d *SpawnerDescriptor, kind scriptgraph.NodeKind, v *catalog.VariableSpec, doc *scriptgraph.Document) {
	if v == nil || v.Name == "" {
		return
	}
	external := !v.Owner.IsZero() &&
		(doc == nil || !v.Owner.Equal(doc.GeneratedType))

	verb := "GET"
	if kind == scriptgraph.KindVariableSet {
		verb = "SET"
	}
	key := verb + " " + v.Name
	if external {
		key = v.Owner.Display() + "::" + key
	}

	d.NodeKind = kind
	d.SpawnerKey = key
	d.Variable = &VariableMetadata{
		Name:             v.Name,
		DeclaredType:     v.DeclaredType.String(),
		OwnerType:        v.Owner.Display(),
		IsExternalMember: external,
	}
}

// previewPorts predicts the port shape the entry's node would have, by
// building a throwaway node through the same shape rules the live node
// uses. The preview node is never placed on a graph.
func previewPorts(spec catalog.EntrySpec, d SpawnerDescriptor, doc *scriptgraph.Document) []PortDescriptor {
	node := scriptgraph.NewNode(d.NodeKind, d.DisplayName, scriptgraph.Position{})

	switch d.NodeKind {
	case scriptgraph.KindFunctionCall:
		member := spec.Function
		node.Function = &scriptgraph.FunctionBinding{
			Member: scriptgraph.MemberRef{
				MemberName: member.Name,
				OwnerType:  scriptgraph.TypeRef{Name: d.Function.OwnerType, Path: d.Function.OwnerPath},
			},
			IsStatic: member.IsStatic,
			IsConst:  member.IsConst,
			IsPure:   member.IsPure,
			Params:   member.Params,
		}
	case scriptgraph.KindVariableGet, scriptgraph.KindVariableSet:
		v := spec.Variable
		node.Variable = &scriptgraph.VariableBinding{
			Member: scriptgraph.MemberRef{
				MemberName:  v.Name,
				OwnerType:   v.Owner,
				SelfContext: !d.Variable.IsExternalMember,
			},
			DeclaredType: v.DeclaredType,
		}
	case scriptgraph.KindCast:
		if spec.Cast != nil {
			node.CastTarget = spec.Cast.Target
		}
	case scriptgraph.KindGeneric:
		if spec.Generic != nil {
			node.Custom = &scriptgraph.CustomBinding{
				Params:  spec.Generic.Params,
				ExecIn:  spec.Generic.ExecIn,
				ExecOut: spec.Generic.ExecOut,
			}
		} else if spec.Function != nil {
			// Degraded callable member: port shape is still knowable
			// from its parameter list even though identity is not.
			node.Custom = &scriptgraph.CustomBinding{
				Params:  spec.Function.Params,
				ExecIn:  !spec.Function.IsPure,
				ExecOut: !spec.Function.IsPure,
			}
		}
	}

	node.ReconstructPorts()
	return PortsFromNode(node)
}

// PortsFromNode flattens a live node's ports into serializable
// descriptors.
func PortsFromNode(n *scriptgraph.Node) []PortDescriptor {
	out := make([]PortDescriptor, 0, len(n.Ports))
	for _, p := range n.Ports {
		out = append(out, PortDescriptor{
			Name:         p.Name,
			Type:         p.Type.Category,
			TypeName:     p.Type.SubType.Name,
			TypePath:     p.Type.SubType.Path,
			Direction:    string(p.Direction),
			IsArray:      p.Type.IsArray,
			IsReference:  p.Type.IsReference,
			Hidden:       p.Hidden,
			Advanced:     p.Advanced,
			DefaultValue: p.DefaultValue,
			Tooltip:      p.Tooltip,
		})
	}
	return out
}

// RerouteKey is the spawner key of the synthetic pass-through descriptor
const RerouteKey = "Reroute"

// Reroute synthesizes the descriptor for the pass-through node kind,
// which has no catalog representation.
func Reroute() SpawnerDescriptor {
	node := scriptgraph.NewRerouteNode(scriptgraph.Position{})
	ports := PortsFromNode(node)
	return SpawnerDescriptor{
		SpawnerKey:        RerouteKey,
		DisplayName:       "Reroute",
		Category:          "Utilities",
		Tooltip:           "Cosmetic node with one input and one output, used to tidy wire routing",
		Keywords:          []string{"reroute", "knot", "passthrough"},
		NodeKind:          scriptgraph.KindReroute,
		Ports:             ports,
		ExpectedPortCount: len(ports),
		IsSynthetic:       true,
	}
}
