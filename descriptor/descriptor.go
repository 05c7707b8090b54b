package descriptor

import (
	"github.com/c360/scriptbridge/scriptgraph"
)

// PortDescriptor is a flat, serializable description of one port,
// derived by read-only inspection and never mutated independently of the
// live node.
type PortDescriptor struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	TypeName     string `json:"type_name,omitempty"`
	TypePath     string `json:"type_path,omitempty"`
	Direction    string `json:"direction"`
	IsArray      bool   `json:"is_array,omitempty"`
	IsReference  bool   `json:"is_reference,omitempty"`
	Hidden       bool   `json:"hidden,omitempty"`
	Advanced     bool   `json:"advanced,omitempty"`
	DefaultValue string `json:"default_value,omitempty"`
	Tooltip      string `json:"tooltip,omitempty"`
}

// FunctionMetadata is the kind-specific block for callable-member entries
type FunctionMetadata struct {
	MemberName string `json:"member_name"`
	OwnerType  string `json:"owner_type"`
	OwnerPath  string `json:"owner_path,omitempty"`
	Module     string `json:"module,omitempty"`
	IsStatic   bool   `json:"is_static,omitempty"`
	IsConst    bool   `json:"is_const,omitempty"`
	IsPure     bool   `json:"is_pure,omitempty"`
}

// VariableMetadata is the kind-specific block for variable accessors
type VariableMetadata struct {
	Name             string `json:"name"`
	DeclaredType     string `json:"declared_type"`
	OwnerType        string `json:"owner_type,omitempty"`
	IsExternalMember bool   `json:"is_external_member,omitempty"`
}

// CastMetadata is the kind-specific block for type-cast entries
type CastMetadata struct {
	TargetType string `json:"target_type"`
}

// SpawnerDescriptor is this system's stable, serializable summary of one
// catalog entry. It is a value type owned by the caller once returned;
// the SpawnerKey is the only field that participates in identity.
type SpawnerDescriptor struct {
	// SpawnerKey is the stable, human-legible identity used for exact
	// re-lookup. Non-empty for every descriptor ever placed in the
	// cache; unique per catalog snapshot, not across host restarts.
	SpawnerKey string `json:"spawner_key"`

	DisplayName string   `json:"display_name"`
	Category    string   `json:"category,omitempty"`
	Tooltip     string   `json:"tooltip,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`

	NodeKind scriptgraph.NodeKind `json:"node_kind"`

	// Kind-specific metadata; at most one block is populated
	Function *FunctionMetadata `json:"function_metadata,omitempty"`
	Variable *VariableMetadata `json:"variable_metadata,omitempty"`
	Cast     *CastMetadata     `json:"cast_metadata,omitempty"`

	Ports             []PortDescriptor `json:"ports"`
	ExpectedPortCount int              `json:"expected_port_count"`

	// IsSynthetic is true when no backing catalog entry exists (the
	// descriptor was synthesized for a node kind like reroute)
	IsSynthetic bool `json:"is_synthetic,omitempty"`

	// Relevance is the search-time ranking score. It is advisory for
	// client-side ordering only and never affects inclusion.
	Relevance int `json:"relevance,omitempty"`
}
