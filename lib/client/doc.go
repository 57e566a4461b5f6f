// Package client provides thin, typed front-end adapters over the engine.
//
// Historically this kind of store grows several near-identical client
// surfaces (a schema-typed one, a generic one, a raw one) that each
// reimplement CRUD plumbing. Here they collapse into a single generic
// Client[T] parameterized by the stored value type and composed with a
// serializer from lib/kv/serializer:
//
//	db, _ := quick.New(quick.DefaultConfig())
//	users := client.New[User](db, serializer.NewJSONSerializer())
//	_ = users.Set("alice", User{Name: "Alice"}, 0)
//
// The adapter forwards every call to the engine and carries no state of
// its own, so multiple clients with different value types can safely share
// one engine handle.
package client
