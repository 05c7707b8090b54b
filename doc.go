// Package scriptbridge exposes a visual script graph editor to external
// automation clients over a JSON command channel.
//
// # Problem
//
// The host editor's node palette is not a fixed enum. It is an open-ended
// catalog of factory entries (tens of thousands), populated at runtime by
// the host's reflection system. Each entry produces one kind of script
// node and carries a different shape of configuration: a callable-member
// binding, a variable reference, a type-cast target, an event signature.
// An automation client (typically an AI agent) needs to discover those
// entries, re-identify one exactly, instantiate it inside a target graph,
// and configure the resulting node, without ever seeing the host's own
// palette UI.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│          service                    │  JSON commands over
//	│  (discover_nodes, create_node, …)   │  NATS request/reply + HTTP
//	└─────────────────────────────────────┘
//	           ↓ dispatches to
//	┌──────────────┬──────────┬───────────┐
//	│  discovery   │ resolve  │  nodeops  │  search / resolution /
//	│              │          │           │  instantiation+config
//	└──────────────┴──────────┴───────────┘
//	           ↓ all read through
//	┌──────────────────────┬──────────────┐
//	│  descriptor          │  catalog     │  serializable descriptors,
//	│  (+ spawner cache)   │  (factories) │  weak entry handles
//	└──────────────────────┴──────────────┘
//	           ↓ mutate
//	┌─────────────────────────────────────┐
//	│          scriptgraph                │  documents, graphs,
//	│                                     │  nodes, ports
//	└─────────────────────────────────────┘
//
// Package roles:
//
//   - catalog: the host catalog abstraction. Opaque factory entries,
//     weak Handle references, the type system, and the
//     context-sensitivity filter hook.
//   - descriptor: stable, JSON-serializable summaries of catalog entries
//     (spawner key, node kind, kind-specific metadata, port shapes) and
//     the self-healing spawner-key cache.
//   - discovery: walks the catalog once, applies name/category/owner
//     filters with a hard result cap, scores relevance, and appends
//     synthetic descriptors for node kinds with no catalog entry.
//   - resolve: multi-tier resolution of a spawner key or kind hint back
//     to one concrete catalog entry (exact key, composite key, unscoped
//     scan, context-filtered scan).
//   - nodeops: node instantiation, per-kind configuration dispatch,
//     port default application, and pass-through (reroute) path
//     building.
//   - scriptgraph: the script document / graph / node / port model the
//     host owns and this system mutates.
//   - docstore: NATS JetStream KV persistence of script documents.
//   - service: the command surface; every response is a JSON object with
//     a success flag and, on failure, an error plus a suggestion the
//     client can self-correct from.
//
// # Failure philosophy
//
// Descriptor extraction never fails: classification gaps degrade the
// entry to the generic node kind instead of blocking discovery.
// Resolution and instantiation return explicit failure results carrying
// the key tried and a suggestion of the discovery call that would
// unblock the client. No error is ever allowed to escape the service
// boundary as a panic.
package scriptbridge
