// Package discovery implements the catalog search and filter engine: a
// single bounded walk over the global catalog that extracts descriptors,
// applies the active filters with AND semantics, scores relevance for
// client-side ranking, and appends synthetic descriptors for node kinds
// that have no catalog representation.
package discovery

import (
	"sort"
	"strings"

	"github.com/c360/scriptbridge/catalog"
	"github.com/c360/scriptbridge/descriptor"
	"github.com/c360/scriptbridge/scriptgraph"
)

// DefaultMaxResults bounds a Discover call that did not name its own cap
const DefaultMaxResults = 50

// Filter narrows a Discover walk. All active (non-empty) filters must
// pass for an entry to be returned.
type Filter struct {
	// SearchTerm is matched case-insensitively against display name,
	// member name, and spawner key
	SearchTerm string `json:"search_term,omitempty"`
	// Category is matched case-insensitively against the entry category
	Category string `json:"category,omitempty"`
	// OwnerType is matched case-insensitively against the owning type's
	// name or path
	OwnerType string `json:"owner_type_filter,omitempty"`
	// MaxResults is a hard cap, not a suggestion: the walk stops the
	// moment this many descriptors have passed. Callers page by
	// re-calling with a larger cap or a narrower filter.
	MaxResults int `json:"max_results,omitempty"`
}

// Engine walks the catalog and returns matching descriptors. Every
// descriptor that passes the filters is also written into the spawner
// cache, so a subsequent exact-key resolution is O(1).
type Engine struct {
	provider catalog.Provider
	cache    *descriptor.Cache
}

// NewEngine creates a search engine over the given catalog
func NewEngine(provider catalog.Provider, cache *descriptor.Cache) *Engine {
	return &Engine{provider: provider, cache: cache}
}

// Discover walks every entry in the catalog once, in catalog order,
// collecting descriptors that pass all active filters until the result
// cap is hit. After catalog entries are exhausted, synthetic descriptors
// are appended for node kinds with no catalog entry (currently the
// pass-through reroute), subject to the same filters and cap. Results
// are ordered by relevance score, descending.
func (e *Engine) Discover(doc *scriptgraph.Document, f Filter) []descriptor.SpawnerDescriptor {
	if f.MaxResults <= 0 {
		f.MaxResults = DefaultMaxResults
	}

	results := make([]descriptor.SpawnerDescriptor, 0, f.MaxResults)
	e.provider.Walk(func(entry catalog.Entry) bool {
		d := descriptor.Extract(entry, doc)
		if !matches(d, f) {
			return true
		}
		d.Relevance = Score(d, f.SearchTerm)
		// Write-through: exact-key re-resolution must not need a second
		// catalog walk.
		_ = e.cache.Put(d.SpawnerKey, entry)
		results = append(results, d)
		return len(results) < f.MaxResults
	})

	if len(results) < f.MaxResults {
		if synthetic := descriptor.Reroute(); matches(synthetic, f) {
			synthetic.Relevance = Score(synthetic, f.SearchTerm)
			results = append(results, synthetic)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})
	return results
}

// matches applies the active filters with AND semantics
func matches(d descriptor.SpawnerDescriptor, f Filter) bool {
	if f.SearchTerm != "" {
		term := strings.ToLower(f.SearchTerm)
		member := ""
		if d.Function != nil {
			member = d.Function.MemberName
		} else if d.Variable != nil {
			member = d.Variable.Name
		}
		if !strings.Contains(strings.ToLower(d.DisplayName), term) &&
			!strings.Contains(strings.ToLower(member), term) &&
			!strings.Contains(strings.ToLower(d.SpawnerKey), term) {
			return false
		}
	}
	if f.Category != "" &&
		!strings.Contains(strings.ToLower(d.Category), strings.ToLower(f.Category)) {
		return false
	}
	if f.OwnerType != "" {
		owner := strings.ToLower(f.OwnerType)
		name, path := ownerOf(d)
		if !strings.Contains(strings.ToLower(name), owner) &&
			!strings.Contains(strings.ToLower(path), owner) {
			return false
		}
	}
	return true
}

func ownerOf(d descriptor.SpawnerDescriptor) (name, path string) {
	switch {
	case d.Function != nil:
		return d.Function.OwnerType, d.Function.OwnerPath
	case d.Variable != nil:
		return d.Variable.OwnerType, ""
	default:
		return "", ""
	}
}

// Score computes the relevance of a descriptor for a search term. It is
// used only for client-side ranking, never for inclusion or exclusion.
func Score(d descriptor.SpawnerDescriptor, term string) int {
	if term == "" {
		return 50
	}
	term = strings.ToLower(term)
	name := strings.ToLower(d.DisplayName)

	score := 0
	switch {
	case name == term:
		score = 100
	case strings.HasPrefix(name, term):
		score = 80
	case strings.Contains(name, term):
		score = 60
	}
	for _, kw := range d.Keywords {
		if strings.Contains(strings.ToLower(kw), term) {
			score += 40
			break
		}
	}
	if strings.Contains(strings.ToLower(d.Tooltip), term) {
		score += 20
	}
	return score
}
