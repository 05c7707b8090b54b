package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/scriptbridge/scriptgraph"
)

func actorRef() scriptgraph.TypeRef {
	return scriptgraph.TypeRef{Name: "Actor", Path: "/types/Actor"}
}

func printStringMember() CallableMember {
	return CallableMember{
		Name:     "PrintString",
		Owner:    scriptgraph.TypeRef{Name: "SystemLibrary", Path: "/types/SystemLibrary"},
		IsStatic: true,
		Params: []scriptgraph.ParamDecl{
			{Name: "in string", Type: scriptgraph.PinType{Category: scriptgraph.PinString},
				Direction: scriptgraph.DirectionInput, DefaultValue: "Hello"},
		},
	}
}

func TestRegistryWalkOrderAndLen(t *testing.T) {
	r := NewRegistry()
	_, err := r.AddFunction(EntryMeta{Category: "Utilities|String"}, printStringMember())
	require.NoError(t, err)
	_, err = r.AddVariableGet(EntryMeta{}, VariableSpec{
		Name:         "Health",
		DeclaredType: scriptgraph.PinType{Category: scriptgraph.PinFloat},
	})
	require.NoError(t, err)
	_, err = r.AddCast(EntryMeta{}, scriptgraph.TypeRef{Name: "Enemy", Path: "/types/Enemy"})
	require.NoError(t, err)

	assert.Equal(t, 3, r.Len())

	var names []string
	r.Walk(func(e Entry) bool {
		names = append(names, e.Meta().DisplayName)
		return true
	})
	assert.Equal(t, []string{"PrintString", "Get Health", "Cast To Enemy"}, names)
}

func TestRegistryWalkStopsEarly(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"A", "B", "C"} {
		_, err := r.AddFunction(EntryMeta{}, CallableMember{Name: name})
		require.NoError(t, err)
	}
	seen := 0
	r.Walk(func(Entry) bool {
		seen++
		return seen < 2
	})
	assert.Equal(t, 2, seen)
}

func TestRegistryRemoveInvalidatesEntry(t *testing.T) {
	r := NewRegistry()
	e, err := r.AddFunction(EntryMeta{}, printStringMember())
	require.NoError(t, err)
	h := NewHandle(e)
	require.True(t, h.IsValid())

	r.Remove(e)

	assert.False(t, h.IsValid())
	_, ok := h.Get()
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
	r.Walk(func(Entry) bool {
		t.Fatal("walk should see no entries after removal")
		return false
	})
}

func TestRegistryValidation(t *testing.T) {
	r := NewRegistry()

	_, err := r.AddFunction(EntryMeta{}, CallableMember{})
	assert.Error(t, err)

	_, err = r.AddVariableSet(EntryMeta{}, VariableSpec{})
	assert.Error(t, err)

	_, err = r.AddCast(EntryMeta{}, scriptgraph.TypeRef{})
	assert.Error(t, err)

	_, err = r.AddEvent(EntryMeta{}, actorRef(), nil)
	assert.Error(t, err)
}

func TestFunctionEntryInvoke(t *testing.T) {
	r := NewRegistry()
	e, err := r.AddFunction(EntryMeta{Category: "Utilities|String"}, printStringMember())
	require.NoError(t, err)

	g := scriptgraph.NewGraph("g1", "EventGraph")
	node, err := e.Invoke(g, scriptgraph.Position{X: 100, Y: 200})
	require.NoError(t, err)

	assert.Equal(t, scriptgraph.KindFunctionCall, node.Kind)
	assert.Equal(t, scriptgraph.Position{X: 100, Y: 200}, node.Position)
	require.NotNil(t, node.Function)
	assert.Equal(t, "PrintString", node.Function.Member.MemberName)
	// Static impure call: exec pins, no self pin
	assert.NotNil(t, node.InputPort("execute"))
	assert.Nil(t, node.InputPort("self"))
	assert.Equal(t, "Hello", node.InputPort("in string").DefaultValue)

	placed, err := g.Node(node.ID)
	require.NoError(t, err)
	assert.Same(t, node, placed)
}

func TestFunctionEntryOuterScopeFallback(t *testing.T) {
	r := NewRegistry()
	e := r.add(
		EntryMeta{DisplayName: "Mystery"},
		EntrySpec{Kind: scriptgraph.KindFunctionCall, Function: &CallableMember{Name: "Mystery"}},
		actorRef())

	g := scriptgraph.NewGraph("g1", "EventGraph")
	node, err := e.Invoke(g, scriptgraph.Position{})
	require.NoError(t, err)
	assert.Equal(t, "Actor", node.Function.Member.OwnerType.Name)
}

func TestVariableAndCastEntryInvoke(t *testing.T) {
	r := NewRegistry()
	setter, err := r.AddVariableSet(EntryMeta{}, VariableSpec{
		Name:         "Health",
		DeclaredType: scriptgraph.PinType{Category: scriptgraph.PinFloat},
		Owner:        actorRef(),
	})
	require.NoError(t, err)
	cast, err := r.AddCast(EntryMeta{}, scriptgraph.TypeRef{Name: "Enemy", Path: "/types/Enemy"})
	require.NoError(t, err)

	g := scriptgraph.NewGraph("g1", "EventGraph")

	setNode, err := setter.Invoke(g, scriptgraph.Position{})
	require.NoError(t, err)
	assert.Equal(t, scriptgraph.KindVariableSet, setNode.Kind)
	assert.NotNil(t, setNode.InputPort("Health"))

	castNode, err := cast.Invoke(g, scriptgraph.Position{})
	require.NoError(t, err)
	assert.Equal(t, scriptgraph.KindCast, castNode.Kind)
	assert.Equal(t, "Enemy", castNode.CastTarget.Name)
	assert.NotNil(t, castNode.OutputPort("as Enemy"))
}

func TestEventEntryInvoke(t *testing.T) {
	r := NewRegistry()
	e, err := r.AddEvent(EntryMeta{DisplayName: "On Damaged"}, actorRef(), []scriptgraph.ParamDecl{
		{Name: "amount", Type: scriptgraph.PinType{Category: scriptgraph.PinFloat}, Direction: scriptgraph.DirectionOutput},
	})
	require.NoError(t, err)

	g := scriptgraph.NewGraph("g1", "EventGraph")
	node, err := e.Invoke(g, scriptgraph.Position{})
	require.NoError(t, err)

	assert.Equal(t, scriptgraph.KindGeneric, node.Kind)
	assert.NotNil(t, node.OutputPort("then"))
	assert.NotNil(t, node.OutputPort("amount"))
}
