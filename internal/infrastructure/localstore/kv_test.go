package localstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestKV_Implementations(t *testing.T) {
	impls := map[string]func(t *testing.T) KV{
		"memory": func(t *testing.T) KV { return NewMemory() },
		"sqlite": func(t *testing.T) KV { return openSQLite(t) },
	}

	for name, open := range impls {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			kv := open(t)

			_, err := kv.Get(ctx, "cart:dev-1")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, kv.Put(ctx, "cart:dev-1", []byte(`[]`)))
			require.NoError(t, kv.Put(ctx, "cart:dev-1", []byte(`[{"quantity":1}]`)))

			got, err := kv.Get(ctx, "cart:dev-1")
			require.NoError(t, err)
			assert.Equal(t, `[{"quantity":1}]`, string(got))

			require.NoError(t, kv.Delete(ctx, "cart:dev-1"))
			_, err = kv.Get(ctx, "cart:dev-1")
			assert.ErrorIs(t, err, ErrNotFound)

			assert.NoError(t, kv.Delete(ctx, "missing"))
		})
	}
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.Put(ctx, "k", []byte("abc")))

	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	got[0] = 'z'

	again, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}
