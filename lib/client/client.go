package client

import (
	"time"

	"github.com/quickkv/quickkv/lib/kv"
	"github.com/quickkv/quickkv/lib/kv/serializer"
)

// --------------------------------------------------------------------------
// Typed Client
// --------------------------------------------------------------------------

// Item is one typed key-value pair handed to the batch write operations.
type Item[T any] struct {
	Key   string
	Value T
	TTL   time.Duration
}

// Client is a thin, typed adapter over a kv.Engine. It converts between a
// fixed value type T and the byte payloads the engine stores, using the
// configured serializer. It carries no state beyond the engine handle and
// the serializer, so any number of clients (with different value types) can
// share one engine.
type Client[T any] struct {
	engine     kv.Engine
	serializer serializer.IValueSerializer
}

// New creates a typed client over the given engine. A nil serializer
// defaults to GOB, which handles the widest range of Go types.
func New[T any](engine kv.Engine, s serializer.IValueSerializer) *Client[T] {
	if s == nil {
		s = serializer.NewGOBSerializer()
	}
	return &Client[T]{engine: engine, serializer: s}
}

// Engine exposes the underlying engine, e.g. for Info or Purge calls
// shared between differently-typed clients.
func (c *Client[T]) Engine() kv.Engine {
	return c.engine
}

// --------------------------------------------------------------------------
// Single-Key Operations
// --------------------------------------------------------------------------

// Get returns the decoded value for a key. The boolean reports whether a
// live entry was found.
func (c *Client[T]) Get(key string) (T, bool, error) {
	var zero T

	b, found, err := c.engine.Get(key)
	if err != nil || !found {
		return zero, false, err
	}

	var value T
	if err := c.serializer.Unmarshal(b, &value); err != nil {
		return zero, false, kv.WrapError(kv.RetCInternalError, "failed to decode stored value", err)
	}
	return value, true, nil
}

// Set encodes and stores a value. A ttl of zero means the engine default.
func (c *Client[T]) Set(key string, value T, ttl time.Duration) error {
	b, err := c.serializer.Marshal(value)
	if err != nil {
		return kv.WrapError(kv.RetCInternalError, "failed to encode value", err)
	}
	return c.engine.Set(key, b, ttl)
}

// Update encodes and replaces the value for an existing key; see
// kv.Engine.Update for the upsert semantics.
func (c *Client[T]) Update(key string, value T, ttl time.Duration, upsert bool) error {
	b, err := c.serializer.Marshal(value)
	if err != nil {
		return kv.WrapError(kv.RetCInternalError, "failed to encode value", err)
	}
	return c.engine.Update(key, b, ttl, upsert)
}

// Delete removes a key-value pair. Deleting an absent key is a no-op.
func (c *Client[T]) Delete(key string) error {
	return c.engine.Delete(key)
}

// Exists reports whether a live entry for the key is present.
func (c *Client[T]) Exists(key string) (bool, error) {
	return c.engine.Exists(key)
}

// Keys returns the keys of all live entries.
func (c *Client[T]) Keys() ([]string, error) {
	return c.engine.Keys()
}

// Values returns the decoded values of all live entries.
func (c *Client[T]) Values() ([]T, error) {
	raw, err := c.engine.Values()
	if err != nil {
		return nil, err
	}

	values := make([]T, len(raw))
	for i, b := range raw {
		if err := c.serializer.Unmarshal(b, &values[i]); err != nil {
			return nil, kv.WrapError(kv.RetCInternalError, "failed to decode stored value", err)
		}
	}
	return values, nil
}

// Len returns the number of live entries.
func (c *Client[T]) Len() (int, error) {
	return c.engine.Len()
}

// Purge removes all entries from the engine.
func (c *Client[T]) Purge() error {
	return c.engine.Purge()
}

// --------------------------------------------------------------------------
// Batch Operations
// --------------------------------------------------------------------------

// GetMany applies Get to every key in order.
func (c *Client[T]) GetMany(keys []string) (values []T, found []bool, err error) {
	raw, found, err := c.engine.GetMany(keys)
	if err != nil {
		return nil, nil, err
	}

	values = make([]T, len(raw))
	for i, b := range raw {
		if !found[i] {
			continue
		}
		if err := c.serializer.Unmarshal(b, &values[i]); err != nil {
			return nil, nil, kv.WrapError(kv.RetCInternalError, "failed to decode stored value", err)
		}
	}
	return values, found, nil
}

// SetMany applies Set to every item in order; no cross-key atomicity.
func (c *Client[T]) SetMany(items []Item[T]) error {
	encoded, err := c.encodeItems(items)
	if err != nil {
		return err
	}
	return c.engine.SetMany(encoded)
}

// DeleteMany applies Delete to every key in order.
func (c *Client[T]) DeleteMany(keys []string) error {
	return c.engine.DeleteMany(keys)
}

// UpdateMany applies Update to every item in order.
func (c *Client[T]) UpdateMany(items []Item[T], upsert bool) error {
	encoded, err := c.encodeItems(items)
	if err != nil {
		return err
	}
	return c.engine.UpdateMany(encoded, upsert)
}

func (c *Client[T]) encodeItems(items []Item[T]) ([]kv.Item, error) {
	encoded := make([]kv.Item, len(items))
	for i, item := range items {
		b, err := c.serializer.Marshal(item.Value)
		if err != nil {
			return nil, kv.WrapError(kv.RetCInternalError, "failed to encode value", err)
		}
		encoded[i] = kv.Item{Key: item.Key, Value: b, TTL: item.TTL}
	}
	return encoded, nil
}
