// Package service exposes the engine over its command channels.
//
// ScriptService is the dispatcher: it owns the open-document map, the
// descriptor cache, the discovery engine, and the node creator, and
// routes JSON commands to them. The same Dispatch path serves three
// transports: NATS request/reply on the configured command subject, a
// plain HTTP POST endpoint, and a WebSocket command loop. Every reply
// uses the same envelope: success flag, payload, and on failure an
// error classification plus an actionable suggestion.
//
// Documents are serialized individually: each open document carries its
// own mutex, so concurrent commands against different documents proceed
// in parallel while commands against one document queue up.
package service
