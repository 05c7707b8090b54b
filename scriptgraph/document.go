package scriptgraph

import (
	"fmt"
	"time"

	"github.com/c360/scriptbridge/errors"
)

// VariableDecl is a variable declared on a script document
type VariableDecl struct {
	Name     string  `json:"name"`
	Type     PinType `json:"type"`
	Category string  `json:"category,omitempty"`
	Tooltip  string  `json:"tooltip,omitempty"`
}

// Document is a visual-scripting program: the canvas graphs it contains,
// the variables it declares, and the type it compiles to. The host owns
// the document; this system reads it and mutates nodes inside its graphs.
type Document struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// GeneratedType is the type this document compiles to. Member
	// externality and self-vs-external call targeting are decided
	// against it.
	GeneratedType TypeRef `json:"generated_type,omitzero"`
	ParentType    TypeRef `json:"parent_type,omitzero"`

	Variables []VariableDecl `json:"variables,omitempty"`
	Graphs    []*Graph       `json:"graphs"`

	// Revision supports optimistic concurrency in the document store
	Revision  uint64    `json:"revision,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// Graph returns the graph with the given ID, falling back to a name
// match so clients can address graphs the way the host displays them.
func (d *Document) Graph(idOrName string) (*Graph, error) {
	for _, g := range d.Graphs {
		if g.ID == idOrName {
			return g, nil
		}
	}
	for _, g := range d.Graphs {
		if g.Name == idOrName {
			return g, nil
		}
	}
	return nil, errors.WrapNotFound(
		fmt.Errorf("graph '%s' in document '%s': %w", idOrName, d.ID, errors.ErrGraphNotFound),
		"Document", "Graph", "graph lookup")
}

// Variable returns the declared variable with the given name
func (d *Document) Variable(name string) (VariableDecl, bool) {
	for _, v := range d.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return VariableDecl{}, false
}

// Validate checks the document is structurally sound
func (d *Document) Validate() error {
	if d.ID == "" {
		return errors.WrapInvalid(fmt.Errorf("document ID cannot be empty"), "Document", "Validate", "validation")
	}
	if d.Name == "" {
		return errors.WrapInvalid(fmt.Errorf("document name cannot be empty"), "Document", "Validate", "validation")
	}

	graphIDs := make(map[string]bool)
	for i, g := range d.Graphs {
		if g.ID == "" {
			return errors.WrapInvalid(
				fmt.Errorf("graph at index %d has empty ID", i),
				"Document", "Validate", "graph ID validation")
		}
		if graphIDs[g.ID] {
			return errors.WrapInvalid(
				fmt.Errorf("duplicate graph ID: %s", g.ID),
				"Document", "Validate", "duplicate graph ID detected")
		}
		graphIDs[g.ID] = true

		nodeIDs := make(map[string]bool)
		for _, n := range g.Nodes {
			if n.ID == "" {
				return errors.WrapInvalid(
					fmt.Errorf("node in graph '%s' has empty ID", g.ID),
					"Document", "Validate", "node ID validation")
			}
			if !n.Kind.Valid() {
				return errors.WrapInvalid(
					fmt.Errorf("node '%s' has unknown kind '%s'", n.ID, n.Kind),
					"Document", "Validate", "node kind validation")
			}
			if nodeIDs[n.ID] {
				return errors.WrapInvalid(
					fmt.Errorf("duplicate node ID: %s", n.ID),
					"Document", "Validate", "duplicate node ID detected")
			}
			nodeIDs[n.ID] = true
		}

		// Every link must point at a node and port that exist
		for _, n := range g.Nodes {
			for _, p := range n.Ports {
				for _, link := range p.Links {
					far, err := g.Node(link.NodeID)
					if err != nil {
						return errors.WrapInvalid(
							fmt.Errorf("port '%s' on node '%s' links to missing node '%s'",
								p.Name, n.ID, link.NodeID),
							"Document", "Validate", "link validation")
					}
					if far.Port(link.Port) == nil {
						return errors.WrapInvalid(
							fmt.Errorf("port '%s' on node '%s' links to missing port '%s' on node '%s'",
								p.Name, n.ID, link.Port, link.NodeID),
							"Document", "Validate", "link validation")
					}
				}
			}
		}
	}
	return nil
}
