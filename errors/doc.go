// Package errors provides standardized error handling patterns for scriptbridge.
//
// # Overview
//
// The errors package implements a classification system shaped by the needs of
// a non-interactive automation client: NotFound (a lookup failed; carries the
// attempted identifier), InvalidState (the graph rejected the operation),
// Unsupported (a value or struct shape with no handling rule), Invalid (bad
// input or configuration), and Internal (unexpected host failures).
//
// Classification drives the JSON error envelope at the service boundary: every
// failure becomes a machine-readable error string plus a human-readable
// suggestion pointing at the discovery or configuration call that would
// unblock the client. Errors carry that suggestion via WithSuggestion and the
// service extracts it via SuggestionOf.
//
// The classification system integrates with Go's standard error handling,
// supporting errors.Is(), errors.As(), and error wrapping chains.
//
// # Quick Start
//
// Use standard error variables for known conditions:
//
//	if node == nil {
//	    return errors.ErrNodeNotFound
//	}
//
// Wrap errors with context:
//
//	if err := graph.Connect(src, dst); err != nil {
//	    return errors.Wrap(err, "PathBuilder", "InsertPassThrough", "wire source to knot")
//	}
//
// Attach a suggestion before the error crosses the service boundary:
//
//	return errors.WithSuggestion(
//	    errors.WrapNotFound(errors.ErrEntryNotFound, "Pipeline", "Resolve", "key lookup"),
//	    "run discover_nodes to obtain a valid spawner_key")
package errors
