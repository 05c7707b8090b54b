// Package scriptgraph models the visual-scripting document: graphs of
// typed nodes wired port-to-port on a canvas.
//
// The host editor owns documents, graphs, and nodes. This package is the
// in-process representation that the catalog, resolution, and node
// configuration layers mutate. Nodes carry kind-specific configuration
// (a function binding, a variable binding, a cast target, a spawn class)
// and rebuild their port lists from that configuration via
// ReconstructPorts, so port shape always reflects the last-applied
// configuration.
//
// All wiring goes through Graph.Connect and Graph.Disconnect, which keep
// both ends of every link consistent; Document.Validate checks the
// invariants (unique IDs, known node kinds, no dangling links).
package scriptgraph
