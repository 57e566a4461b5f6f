// Package serializer converts Go values to and from the byte payloads the
// engine stores. The engine itself is monomorphic over []byte; the typed
// clients compose it with one of the serializers in this package to store
// arbitrary value types.
//
// Three implementations are provided:
//   - JSON: human-readable, interoperable, moderate speed
//   - GOB: Go-native binary encoding, handles the widest range of types
//   - Raw: zero-overhead pass-through for []byte and string payloads
//
// All implementations are stateless and safe for concurrent use.
package serializer
