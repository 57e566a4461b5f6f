package client

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/quickkv/quickkv/lib/kv"
	"github.com/quickkv/quickkv/lib/kv/engines/quick"
	"github.com/quickkv/quickkv/lib/kv/serializer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type user struct {
	Name  string
	Score int
}

func newTestEngine(t *testing.T) kv.Engine {
	t.Helper()
	e, err := quick.New(quick.Config{
		Path:    filepath.Join(t.TempDir(), "client.qkv"),
		Runtime: kv.RuntimeDisk,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestTypedRoundTrip(t *testing.T) {
	serializers := map[string]serializer.IValueSerializer{
		"json": serializer.NewJSONSerializer(),
		"gob":  serializer.NewGOBSerializer(),
	}

	for name, s := range serializers {
		t.Run(name, func(t *testing.T) {
			c := New[user](newTestEngine(t), s)

			want := user{Name: "alice", Score: 99}
			require.NoError(t, c.Set("alice", want, 0))

			got, found, err := c.Get("alice")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, want, got)
		})
	}
}

func TestDefaultSerializerIsGOB(t *testing.T) {
	c := New[user](newTestEngine(t), nil)

	require.NoError(t, c.Set("bob", user{Name: "bob", Score: 1}, 0))
	got, found, err := c.Get("bob")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "bob", got.Name)
}

func TestMissingKeyReturnsZeroValue(t *testing.T) {
	c := New[user](newTestEngine(t), nil)

	got, found, err := c.Get("nobody")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, user{}, got)
}

func TestTypedBatchOperations(t *testing.T) {
	c := New[int](newTestEngine(t), serializer.NewJSONSerializer())

	require.NoError(t, c.SetMany([]Item[int]{
		{Key: "one", Value: 1},
		{Key: "two", Value: 2},
	}))

	values, found, err := c.GetMany([]string{"one", "two", "three"})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, false}, found)
	assert.Equal(t, 1, values[0])
	assert.Equal(t, 2, values[1])
	assert.Zero(t, values[2])

	require.NoError(t, c.UpdateMany([]Item[int]{{Key: "one", Value: 11}}, false))
	got, _, err := c.Get("one")
	require.NoError(t, err)
	assert.Equal(t, 11, got)

	require.NoError(t, c.DeleteMany([]string{"one", "two"}))
	n, err := c.Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSharedEngineAcrossTypes(t *testing.T) {
	e := newTestEngine(t)

	users := New[user](e, serializer.NewJSONSerializer())
	counts := New[int](e, serializer.NewJSONSerializer())

	require.NoError(t, users.Set("user:alice", user{Name: "alice"}, 0))
	require.NoError(t, counts.Set("count:logins", 7, 0))

	n, err := users.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n) // both clients see the same engine

	got, found, err := counts.Get("count:logins")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 7, got)
}

func TestTypedTTL(t *testing.T) {
	c := New[string](newTestEngine(t), serializer.NewJSONSerializer())

	require.NoError(t, c.Set("temp", "value", 50*time.Millisecond))
	time.Sleep(100 * time.Millisecond)

	_, found, err := c.Get("temp")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestValuesDecodesAll(t *testing.T) {
	c := New[int](newTestEngine(t), serializer.NewJSONSerializer())

	for i, key := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(key, i, 0))
	}

	values, err := c.Values()
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 1, 2}, values)
}
