package scriptgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func actorType() TypeRef {
	return TypeRef{Name: "Actor", Path: "/types/Actor"}
}

func testFunctionNode(pure, static bool) *Node {
	n := NewNode(KindFunctionCall, "Print String", Position{X: 10, Y: 20})
	n.Function = &FunctionBinding{
		Member:   MemberRef{MemberName: "PrintString", OwnerType: actorType()},
		IsPure:   pure,
		IsStatic: static,
		Params: []ParamDecl{
			{Name: "in string", Type: PinType{Category: PinString}, Direction: DirectionInput, DefaultValue: "Hello"},
			{Name: "return value", Type: PinType{Category: PinBool}, Direction: DirectionOutput},
		},
	}
	n.ReconstructPorts()
	return n
}

func TestFunctionPortShape(t *testing.T) {
	tests := []struct {
		name     string
		pure     bool
		static   bool
		expected []string
	}{
		{"impure instance call", false, false, []string{"execute", "then", "self", "in string", "return value"}},
		{"pure instance call", true, false, []string{"self", "in string", "return value"}},
		{"impure static call", false, true, []string{"execute", "then", "in string", "return value"}},
		{"pure static call", true, true, []string{"in string", "return value"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			n := testFunctionNode(test.pure, test.static)
			var names []string
			for _, p := range n.Ports {
				names = append(names, p.Name)
			}
			assert.Equal(t, test.expected, names)
		})
	}
}

func TestSelfPinHiddenInSelfContext(t *testing.T) {
	n := testFunctionNode(false, false)
	require.NotNil(t, n.InputPort("self"))
	assert.False(t, n.InputPort("self").Hidden)

	n.Function.Member.SelfContext = true
	n.ReconstructPorts()
	require.NotNil(t, n.InputPort("self"))
	assert.True(t, n.InputPort("self").Hidden)
}

func TestReconstructPreservesDefaultsAndLinks(t *testing.T) {
	n := testFunctionNode(false, false)
	n.InputPort("in string").DefaultValue = "Changed"
	n.InputPort("execute").addLink(LinkRef{NodeID: "other", Port: "then"})

	n.ReconstructPorts()

	assert.Equal(t, "Changed", n.InputPort("in string").DefaultValue)
	require.True(t, n.InputPort("execute").Connected())
	assert.Equal(t, "other", n.InputPort("execute").Links[0].NodeID)
}

func TestVariablePortShape(t *testing.T) {
	getter := NewNode(KindVariableGet, "Get Health", Position{})
	getter.Variable = &VariableBinding{
		Member:       MemberRef{MemberName: "Health", SelfContext: true},
		DeclaredType: PinType{Category: PinFloat},
	}
	getter.ReconstructPorts()
	require.Len(t, getter.Ports, 1)
	assert.Equal(t, "Health", getter.Ports[0].Name)
	assert.Equal(t, DirectionOutput, getter.Ports[0].Direction)

	setter := NewNode(KindVariableSet, "Set Health", Position{})
	setter.Variable = &VariableBinding{
		Member:       MemberRef{MemberName: "Health", OwnerType: actorType()},
		DeclaredType: PinType{Category: PinFloat},
	}
	setter.ReconstructPorts()

	require.NotNil(t, setter.InputPort("execute"))
	require.NotNil(t, setter.OutputPort("then"))
	// External access exposes a target pin
	require.NotNil(t, setter.InputPort("target"))
	require.NotNil(t, setter.InputPort("Health"))
	require.NotNil(t, setter.OutputPort("output"))
}

func TestCastPortShape(t *testing.T) {
	n := NewNode(KindCast, "Cast", Position{})
	n.CastTarget = TypeRef{Name: "Enemy", Path: "/types/Enemy"}
	n.ReconstructPorts()

	require.NotNil(t, n.InputPort("object"))
	require.NotNil(t, n.OutputPort("then"))
	require.NotNil(t, n.OutputPort("cast failed"))
	out := n.OutputPort("as Enemy")
	require.NotNil(t, out)
	assert.Equal(t, "Enemy", out.Type.SubType.Name)
}

func TestSpawnClassReshapesPorts(t *testing.T) {
	n := NewNode(KindFunctionCall, "Spawn Actor", Position{})
	n.Function = &FunctionBinding{
		Member:   MemberRef{MemberName: "SpawnActor", OwnerType: actorType()},
		IsStatic: true,
	}
	n.SpawnClass = TypeRef{Name: "Enemy", Path: "/types/Enemy"}
	n.ReconstructPorts()

	class := n.InputPort("class")
	require.NotNil(t, class)
	assert.Equal(t, "/types/Enemy", class.DefaultValue)

	ret := n.OutputPort("return value")
	require.NotNil(t, ret)
	assert.Equal(t, "Enemy", ret.Type.SubType.Name)
}

func TestRerouteNode(t *testing.T) {
	n := NewRerouteNode(Position{X: 192, Y: 0})
	require.Len(t, n.Ports, 2)
	assert.Equal(t, PinWildcard, n.Ports[0].Type.Category)
	assert.Equal(t, PinWildcard, n.Ports[1].Type.Category)
	assert.Equal(t, KindReroute, n.Kind)
}

func TestGenericNodeKeepsEntryAllocatedPorts(t *testing.T) {
	n := NewNode(KindGeneric, "On Damaged", Position{})
	n.Ports = []*Port{{Name: "then", Direction: DirectionOutput, Type: ExecType()}}
	n.ReconstructPorts()
	// No custom binding: reconstruction must not discard entry-allocated ports
	require.Len(t, n.Ports, 1)
}
