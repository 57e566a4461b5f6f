// Package kv defines the contract for the embedded key-value engine and the
// shared types consumed by all front-end adapters (typed clients, CLI, shell).
//
// The package focuses on:
//   - A unified interface (Engine) for key-value operations with optional
//     per-entry time-to-live and batch variants
//   - A structured error system using typed return codes (RetCode) so callers
//     can distinguish I/O failures, corrupt data and invalid operations
//     without string matching
//
// Key Components:
//
//   - Engine Interface: The core abstraction defining get/set/update/delete,
//     existence and enumeration queries, batch forms and lifecycle management.
//     All implementations share this common interface, allowing applications
//     to switch between the disk-backed and the memory-only runtime without
//     code changes.
//
//   - Error System: Every failing operation returns a *kv.Error carrying a
//     RetCode and, where applicable, the underlying cause reachable via
//     errors.Unwrap. Key-not-found is deliberately NOT an error: Get and
//     Exists report absence through their boolean return value, Delete and
//     Update on a missing key succeed as no-ops.
//
//   - Item / EngineInfo: Plain value types used by the batch operations and
//     the Info metadata query.
//
// The canonical implementation lives in the
// "github.com/quickkv/quickkv/lib/kv/engines/quick" package.
package kv
