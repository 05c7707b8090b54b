package catalog

import (
	"fmt"
	"sync"

	"github.com/c360/scriptbridge/errors"
	"github.com/c360/scriptbridge/scriptgraph"
)

// Registry is an in-memory node catalog. The host's reflection layer
// populates it at startup (and may keep contributing entries while the
// editor runs); the discovery and resolution layers only ever read it.
// It doubles as the bounded fake catalog the unit tests run against.
type Registry struct {
	mu      sync.RWMutex
	entries []*entry
}

// NewRegistry creates an empty catalog registry
func NewRegistry() *Registry {
	return &Registry{}
}

// AddFunction contributes a callable-member entry. The display name
// defaults to the member name; the entry's outer scope is the member's
// declaring type.
func (r *Registry) AddFunction(meta EntryMeta, member CallableMember) (Entry, error) {
	return r.AddFunctionScoped(meta, member, member.Owner)
}

// AddFunctionScoped contributes a callable-member entry under an
// explicit registry scope. Reflection sometimes surfaces a member with
// no declaration; the scope then serves as the owning-type fallback
// during extraction.
func (r *Registry) AddFunctionScoped(meta EntryMeta, member CallableMember, outer scriptgraph.TypeRef) (Entry, error) {
	if member.Name == "" {
		return nil, errors.WrapInvalid(
			fmt.Errorf("callable member has empty name"),
			"Registry", "AddFunction", "member validation")
	}
	if meta.DisplayName == "" {
		meta.DisplayName = member.Name
	}
	return r.add(meta, EntrySpec{Kind: scriptgraph.KindFunctionCall, Function: &member}, outer), nil
}

// AddVariableGet contributes a variable-read entry
func (r *Registry) AddVariableGet(meta EntryMeta, v VariableSpec) (Entry, error) {
	return r.addVariable(meta, v, false)
}

// AddVariableSet contributes a variable-write entry
func (r *Registry) AddVariableSet(meta EntryMeta, v VariableSpec) (Entry, error) {
	return r.addVariable(meta, v, true)
}

func (r *Registry) addVariable(meta EntryMeta, v VariableSpec, setter bool) (Entry, error) {
	if v.Name == "" {
		return nil, errors.WrapInvalid(
			fmt.Errorf("variable has empty name"),
			"Registry", "AddVariable", "variable validation")
	}
	v.Setter = setter
	kind := scriptgraph.KindVariableGet
	verb := "Get"
	if setter {
		kind = scriptgraph.KindVariableSet
		verb = "Set"
	}
	if meta.DisplayName == "" {
		meta.DisplayName = verb + " " + v.Name
	}
	return r.add(meta, EntrySpec{Kind: kind, Variable: &v}, v.Owner), nil
}

// AddCast contributes a type-cast entry
func (r *Registry) AddCast(meta EntryMeta, target scriptgraph.TypeRef) (Entry, error) {
	if target.IsZero() {
		return nil, errors.WrapInvalid(
			fmt.Errorf("cast entry has no target type"),
			"Registry", "AddCast", "target validation")
	}
	if meta.DisplayName == "" {
		meta.DisplayName = "Cast To " + target.Display()
	}
	return r.add(meta, EntrySpec{Kind: scriptgraph.KindCast, Cast: &CastSpec{Target: target}}, scriptgraph.TypeRef{}), nil
}

// AddEvent contributes an event-signature entry. Events have no richer
// classification and surface as the generic node kind.
func (r *Registry) AddEvent(meta EntryMeta, owner scriptgraph.TypeRef, params []scriptgraph.ParamDecl) (Entry, error) {
	if meta.DisplayName == "" {
		return nil, errors.WrapInvalid(
			fmt.Errorf("event entry has empty display name"),
			"Registry", "AddEvent", "event validation")
	}
	spec := EntrySpec{
		Kind:    scriptgraph.KindGeneric,
		Generic: &GenericSpec{Params: params, ExecOut: true},
	}
	return r.add(meta, spec, owner), nil
}

func (r *Registry) add(meta EntryMeta, spec EntrySpec, outer scriptgraph.TypeRef) Entry {
	e := newEntry(meta, spec, outer)
	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()
	return e
}

// Remove destroys an entry. The backing object becomes invalid
// immediately; cached weak handles self-heal on their next lookup.
func (r *Registry) Remove(target Entry) {
	e, ok := target.(*entry)
	if !ok {
		return
	}
	e.invalidate()

	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.entries[:0]
	for _, candidate := range r.entries {
		if candidate != e {
			out = append(out, candidate)
		}
	}
	r.entries = out
}

// Walk calls fn for every live entry, in registration order, until fn
// returns false. The walk runs over a snapshot so fn may safely touch
// the registry.
func (r *Registry) Walk(fn func(Entry) bool) {
	r.mu.RLock()
	snapshot := make([]*entry, len(r.entries))
	copy(snapshot, r.entries)
	r.mu.RUnlock()

	for _, e := range snapshot {
		if !e.Alive() {
			continue
		}
		if !fn(e) {
			return
		}
	}
}

// Len returns the number of live entries
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, e := range r.entries {
		if e.Alive() {
			count++
		}
	}
	return count
}
