package catalog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/c360/scriptbridge/errors"
	"github.com/c360/scriptbridge/scriptgraph"
)

// TypeDescriptor is one named type in the host's type registry
type TypeDescriptor struct {
	Ref    scriptgraph.TypeRef `json:"ref"`
	Parent string              `json:"parent,omitempty"` // parent type name, empty at the root
}

// TypeSystem is the host's type-descriptor resolver: path-based and
// quoted-reference lookup of named types, plus the is-a hierarchy the
// call-target and context-sensitivity decisions depend on.
type TypeSystem struct {
	mu     sync.RWMutex
	byName map[string]TypeDescriptor
	byPath map[string]TypeDescriptor
}

// NewTypeSystem creates an empty type system
func NewTypeSystem() *TypeSystem {
	return &TypeSystem{
		byName: make(map[string]TypeDescriptor),
		byPath: make(map[string]TypeDescriptor),
	}
}

// Register adds a type descriptor
func (ts *TypeSystem) Register(td TypeDescriptor) error {
	if td.Ref.Name == "" {
		return errors.WrapInvalid(
			fmt.Errorf("type descriptor has empty name"),
			"TypeSystem", "Register", "descriptor validation")
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.byName[td.Ref.Name] = td
	if td.Ref.Path != "" {
		ts.byPath[td.Ref.Path] = td
	}
	return nil
}

// Resolve finds a type descriptor from a free-form string. Accepted
// forms, tried in order:
//
//   - bare name:               "Enemy"
//   - registry path:           "/types/Enemy"
//   - quoted type reference:   "Class'/types/Enemy'"
//   - generated-class suffix:  "Enemy_C" for "Enemy" (and the reverse)
//   - case-insensitive name as a last resort
func (ts *TypeSystem) Resolve(spec string) (TypeDescriptor, error) {
	raw := strings.TrimSpace(spec)
	if raw == "" {
		return TypeDescriptor{}, errors.WrapInvalid(
			fmt.Errorf("type specifier is empty"),
			"TypeSystem", "Resolve", "specifier validation")
	}

	// Quoted reference: Anything'<inner>' unwraps to the inner path/name
	if idx := strings.IndexByte(raw, '\''); idx >= 0 && strings.HasSuffix(raw, "'") {
		raw = raw[idx+1 : len(raw)-1]
	}

	ts.mu.RLock()
	defer ts.mu.RUnlock()

	if td, ok := ts.byName[raw]; ok {
		return td, nil
	}
	if td, ok := ts.byPath[raw]; ok {
		return td, nil
	}
	// Path-qualified: fall back to the last segment as a name
	if strings.ContainsRune(raw, '/') {
		if td, ok := ts.byName[lastSegment(raw)]; ok {
			return td, nil
		}
	}
	// Generated-class suffix variants
	if trimmed, ok := strings.CutSuffix(raw, "_C"); ok {
		if td, found := ts.byName[trimmed]; found {
			return td, nil
		}
	} else if td, found := ts.byName[raw+"_C"]; found {
		return td, nil
	}
	// Case-insensitive, last resort
	for name, td := range ts.byName {
		if strings.EqualFold(name, raw) {
			return td, nil
		}
	}

	return TypeDescriptor{}, errors.WithSuggestion(
		errors.WrapNotFound(
			fmt.Errorf("type '%s': %w", spec, errors.ErrTypeNotFound),
			"TypeSystem", "Resolve", "type lookup"),
		"use the type's registered name or registry path; discover_nodes results include owning-type paths")
}

// IsA reports whether child is, or descends from, ancestor
func (ts *TypeSystem) IsA(child, ancestor scriptgraph.TypeRef) bool {
	if child.IsZero() || ancestor.IsZero() {
		return false
	}
	if child.Equal(ancestor) {
		return true
	}

	ts.mu.RLock()
	defer ts.mu.RUnlock()

	name := child.Name
	if name == "" {
		name = lastSegment(child.Path)
	}
	// Bounded walk: host hierarchies are shallow, but a registration
	// cycle must not hang the caller.
	for depth := 0; depth < 64; depth++ {
		td, ok := ts.byName[name]
		if !ok || td.Parent == "" {
			return false
		}
		if parent, found := ts.byName[td.Parent]; found && parent.Ref.Equal(ancestor) {
			return true
		} else if !found && td.Parent == ancestor.Name {
			return true
		}
		name = td.Parent
	}
	return false
}

func lastSegment(path string) string {
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
