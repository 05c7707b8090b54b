// Package resolve turns a client-supplied spawner key into a live
// catalog entry. Resolution runs an ordered pipeline of strategies, from
// the cheap exact cache hit down to a context-aware catalog scan, and
// stops at the first hit. Every successful scan re-primes the descriptor
// cache so the next resolution of the same key is a cache hit.
package resolve

import (
	"fmt"
	"strings"

	"github.com/c360/scriptbridge/catalog"
	"github.com/c360/scriptbridge/descriptor"
	"github.com/c360/scriptbridge/errors"
	"github.com/c360/scriptbridge/scriptgraph"
)

// Request names what the client wants resolved. Key is the only
// required field; the hints narrow the scan tiers when the key alone is
// ambiguous.
type Request struct {
	// Key is a spawner key or a bare member/display name
	Key string `json:"node_type"`
	// KindName optionally pins the node kind ("function_call", "cast", ...)
	KindName string `json:"node_kind,omitempty"`
	// OwnerHint optionally names the owning type when the key is bare
	OwnerHint string `json:"owner_class,omitempty"`
}

// Env carries the catalog surfaces a resolution runs against
type Env struct {
	Provider catalog.Provider
	Cache    *descriptor.Cache
	Document *scriptgraph.Document
	Filter   catalog.ContextFilter
	Types    *catalog.TypeSystem
}

// Result reports a successful resolution: the live entry, the canonical
// spawner key it is cached under, and which tier found it.
type Result struct {
	Entry catalog.Entry
	Key   string
	Tier  string
}

// Resolver is one tier of the pipeline
type Resolver struct {
	Name string
	Run  func(Request, Env) (catalog.Entry, bool)
}

// Pipeline returns the resolution tiers in the order they fire
func Pipeline() []Resolver {
	return []Resolver{
		{Name: "exact_cache", Run: exactCache},
		{Name: "composite_cache", Run: compositeCache},
		{Name: "unscoped_scan", Run: unscopedScan},
		{Name: "context_scan", Run: contextScan},
	}
}

// Resolve runs the pipeline for one request. The returned error is
// classified not-found and carries a suggestion pointing the client at
// discovery; it never means the catalog itself failed.
func Resolve(req Request, env Env) (Result, error) {
	if req.Key == "" {
		return Result{}, errors.WrapInvalid(
			fmt.Errorf("empty node type"),
			"resolve", "Resolve", "request validation")
	}

	for _, tier := range Pipeline() {
		entry, ok := tier.Run(req, env)
		if !ok {
			continue
		}
		key := req.Key
		if tier.Name != "exact_cache" {
			// Cache under the canonical key so the next resolution of
			// this entry short-circuits at tier one.
			d := descriptor.Extract(entry, env.Document)
			key = d.SpawnerKey
			_ = env.Cache.Put(key, entry)
		}
		return Result{Entry: entry, Key: key, Tier: tier.Name}, nil
	}

	err := errors.WrapNotFound(
		fmt.Errorf("no catalog entry matches %q", req.Key),
		"resolve", "Resolve", "spawner lookup")
	return Result{}, errors.WithSuggestion(err,
		fmt.Sprintf("no spawner named %q; call discover_nodes with search_term=%q to list available spawners", req.Key, req.Key))
}

// exactCache treats the request key as a canonical spawner key
func exactCache(req Request, env Env) (catalog.Entry, bool) {
	return env.Cache.Lookup(req.Key)
}

// compositeCache rebuilds candidate spawner keys from the hints and
// tries each against the cache. It only helps when the client passed a
// bare name plus enough hints to reconstruct the canonical key.
func compositeCache(req Request, env Env) (catalog.Entry, bool) {
	for _, key := range compositeKeys(req) {
		if entry, ok := env.Cache.Lookup(key); ok {
			return entry, true
		}
	}
	return nil, false
}

func compositeKeys(req Request) []string {
	var keys []string
	switch req.KindName {
	case string(scriptgraph.KindVariableGet):
		keys = append(keys, "GET "+req.Key)
		if req.OwnerHint != "" {
			keys = append(keys, req.OwnerHint+"::GET "+req.Key)
		}
	case string(scriptgraph.KindVariableSet):
		keys = append(keys, "SET "+req.Key)
		if req.OwnerHint != "" {
			keys = append(keys, req.OwnerHint+"::SET "+req.Key)
		}
	case string(scriptgraph.KindCast):
		keys = append(keys, "Cast To "+req.Key)
	default:
		if req.OwnerHint != "" {
			keys = append(keys, req.OwnerHint+"::"+req.Key)
		}
	}
	return keys
}

// scanRequest prepares a request for the scan tiers: a composite
// "Owner::Name" key with no explicit hint is split, so a cold cache
// still resolves canonical keys through scoped scanning.
func scanRequest(req Request) Request {
	if req.OwnerHint != "" {
		return req
	}
	if owner, name, ok := strings.Cut(req.Key, "::"); ok && owner != "" && name != "" {
		req.OwnerHint = owner
		req.Key = name
	}
	return req
}

// unscopedScan walks the catalog for a name-equality match. It fires
// only when the request carries no owner hint: an owner hint means the
// client wants scoped matching, which tier four handles.
func unscopedScan(req Request, env Env) (catalog.Entry, bool) {
	req = scanRequest(req)
	if req.OwnerHint != "" {
		return nil, false
	}
	var found catalog.Entry
	env.Provider.Walk(func(e catalog.Entry) bool {
		if !kindMatches(e, req.KindName) {
			return true
		}
		if nameMatches(e, req.Key) {
			found = e
			return false
		}
		return true
	})
	return found, found != nil
}

// contextScan collects every name match and picks the best candidate:
// entries legal under the context filter beat illegal ones, and among
// those an exact owner-hint match beats the rest.
func contextScan(req Request, env Env) (catalog.Entry, bool) {
	req = scanRequest(req)
	var candidates []catalog.Entry
	env.Provider.Walk(func(e catalog.Entry) bool {
		if kindMatches(e, req.KindName) && nameMatches(e, req.Key) {
			candidates = append(candidates, e)
		}
		return true
	})
	if len(candidates) == 0 {
		return nil, false
	}

	if env.Filter != nil {
		ctx := &catalog.Context{Document: env.Document}
		legal := candidates[:0:0]
		for _, e := range candidates {
			if env.Filter(e, ctx) {
				legal = append(legal, e)
			}
		}
		if len(legal) > 0 {
			candidates = legal
		}
	}

	if req.OwnerHint != "" {
		for _, e := range candidates {
			if ownerMatches(e, req.OwnerHint, env.Types) {
				return e, true
			}
		}
	}
	return candidates[0], true
}

func kindMatches(e catalog.Entry, kindName string) bool {
	if kindName == "" {
		return true
	}
	return string(e.Spec().Kind) == kindName
}

// nameMatches compares the request key against display name, member
// name, and cast target display, case-insensitively
func nameMatches(e catalog.Entry, key string) bool {
	if strings.EqualFold(e.Meta().DisplayName, key) {
		return true
	}
	spec := e.Spec()
	switch {
	case spec.Function != nil:
		return strings.EqualFold(spec.Function.Name, key)
	case spec.Variable != nil:
		return strings.EqualFold(spec.Variable.Name, key)
	case spec.Cast != nil:
		return strings.EqualFold(spec.Cast.Target.Display(), key)
	}
	return false
}

// ownerMatches resolves the hint through the type system when one is
// available, falling back to raw name comparison
func ownerMatches(e catalog.Entry, hint string, types *catalog.TypeSystem) bool {
	owner := ownerRef(e)
	if owner.IsZero() {
		return false
	}
	if types != nil {
		if hinted, err := types.Resolve(hint); err == nil {
			return owner.Equal(hinted.Ref)
		}
	}
	return strings.EqualFold(owner.Name, hint) || strings.EqualFold(owner.Path, hint)
}

func ownerRef(e catalog.Entry) scriptgraph.TypeRef {
	spec := e.Spec()
	switch {
	case spec.Function != nil && !spec.Function.Owner.IsZero():
		return spec.Function.Owner
	case spec.Variable != nil:
		return spec.Variable.Owner
	}
	return e.OuterScope()
}
