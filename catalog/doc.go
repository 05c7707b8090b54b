// Package catalog abstracts the host editor's global node catalog.
//
// The catalog is an open-ended, host-owned collection of factory
// entries, each capable of producing one kind of script node. Entries
// are opaque and live only as long as the host keeps them; everything
// outside this package references them weakly through Handle and must
// revalidate before every dereference.
//
// The package provides:
//
//   - Entry and Provider: the read-only collaborator interfaces the
//     discovery and resolution layers consume.
//   - Registry: the in-memory catalog the host's reflection layer
//     populates (and the bounded fake catalog unit tests run against).
//   - Handle: explicit weak references with an IsValid check.
//   - TypeSystem: the host's type-descriptor resolver (bare names,
//     registry paths, quoted type references) and is-a hierarchy.
//   - ContextFilter: the injected "is this candidate legal here"
//     predicate used by context-filtered resolution.
package catalog
