package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/c360/scriptbridge/errors"
	"github.com/c360/scriptbridge/scriptgraph"
)

// Manifest is the JSON interchange shape a host exports its catalog
// in. The daemon loads one at startup to populate the registry and
// type system; a host embedding the engine registers entries directly
// instead.
type Manifest struct {
	Types     []TypeDescriptor   `json:"types,omitempty"`
	Functions []FunctionManifest `json:"functions,omitempty"`
	Variables []VariableManifest `json:"variables,omitempty"`
	Casts     []CastManifest     `json:"casts,omitempty"`
	Events    []EventManifest    `json:"events,omitempty"`
}

// FunctionManifest pairs a callable member with its presentation
// metadata
type FunctionManifest struct {
	EntryMeta
	CallableMember
}

// VariableManifest declares one variable. Both accessor entries are
// registered for it unless ReadOnly suppresses the setter.
type VariableManifest struct {
	EntryMeta
	VariableSpec
	ReadOnly bool `json:"read_only,omitempty"`
}

// CastManifest declares one cast target
type CastManifest struct {
	EntryMeta
	Target scriptgraph.TypeRef `json:"target"`
}

// EventManifest declares one event signature
type EventManifest struct {
	EntryMeta
	Owner  scriptgraph.TypeRef     `json:"owner,omitzero"`
	Params []scriptgraph.ParamDecl `json:"params,omitempty"`
}

// LoadManifest reads and parses a manifest file
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapNotFound(
			fmt.Errorf("read manifest: %w", err),
			"catalog", "LoadManifest", "manifest loading")
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("parse manifest %s: %w", path, err),
			"catalog", "LoadManifest", "manifest parsing")
	}
	return &m, nil
}

// Apply registers every manifest declaration with the registry and
// type system. Types register first so later entries can rely on them.
func (m *Manifest) Apply(r *Registry, ts *TypeSystem) error {
	for _, td := range m.Types {
		if err := ts.Register(td); err != nil {
			return err
		}
	}
	for _, f := range m.Functions {
		if _, err := r.AddFunction(f.EntryMeta, f.CallableMember); err != nil {
			return err
		}
	}
	for _, v := range m.Variables {
		if _, err := r.AddVariableGet(v.EntryMeta, v.VariableSpec); err != nil {
			return err
		}
		if v.ReadOnly {
			continue
		}
		if _, err := r.AddVariableSet(v.EntryMeta, v.VariableSpec); err != nil {
			return err
		}
	}
	for _, c := range m.Casts {
		if _, err := r.AddCast(c.EntryMeta, c.Target); err != nil {
			return err
		}
	}
	for _, e := range m.Events {
		if _, err := r.AddEvent(e.EntryMeta, e.Owner, e.Params); err != nil {
			return err
		}
	}
	return nil
}
