// Package descriptor turns opaque catalog entries into stable,
// JSON-serializable descriptions an automation client can hold onto.
//
// A SpawnerDescriptor summarizes one catalog entry: identity (the
// spawner key), display metadata, node-kind classification with
// kind-specific metadata, and the port shape the entry's node would
// have. Extraction is total: anything the extractor cannot classify
// degrades to the generic node kind with the display name as its key,
// so a single odd entry can never block discovery of the rest of the
// catalog.
//
// The Cache maps spawner keys back to weak references of the live
// entries they were extracted from. It makes exact-key resolution O(1)
// after one discovery pass and self-heals when the host destroys an
// entry out from under it.
package descriptor
