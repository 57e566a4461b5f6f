// Package testing provides a reusable conformance test suite for
// implementations of the kv.Engine interface.
//
// The suite is invoked with a factory producing fresh engine instances and
// verifies the behavioral contract: round-trips, overwrite semantics,
// delete idempotence, TTL expiry, update/upsert rules, batch ordering,
// purge and use-after-close. Engine packages call RunEngineTests from
// their own tests for every runtime they support.
package testing
