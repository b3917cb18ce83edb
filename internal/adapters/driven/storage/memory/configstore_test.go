package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("camera.stream_url", "http://cam/stream"))

	val, ok := store.Get("camera.stream_url")
	assert.True(t, ok)
	assert.Equal(t, "http://cam/stream", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_NewConfigStoreFrom(t *testing.T) {
	src := map[string]any{"serial.port": "COM4"}
	store := NewConfigStoreFrom(src)
	src["serial.port"] = "COM9"

	assert.Equal(t, "COM4", store.GetString("serial.port"))
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStoreFrom(map[string]any{
		"s":      "value",
		"i":      42,
		"i64":    int64(7),
		"f":      0.3,
		"b":      true,
		"list":   []string{"organik", "anorganik"},
		"anyl":   []any{"B3", 1},
		"number": 9600,
	})

	assert.Equal(t, "value", store.GetString("s"))
	assert.Equal(t, "", store.GetString("i"))
	assert.Equal(t, 42, store.GetInt("i"))
	assert.Equal(t, 7, store.GetInt("i64"))
	assert.Equal(t, 0, store.GetInt("s"))
	assert.InDelta(t, 0.3, store.GetFloat("f"), 1e-9)
	assert.InDelta(t, 9600, store.GetFloat("number"), 1e-9)
	assert.Zero(t, store.GetFloat("s"))
	assert.True(t, store.GetBool("b"))
	assert.False(t, store.GetBool("missing"))
	assert.Equal(t, []string{"organik", "anorganik"}, store.GetStringSlice("list"))
	assert.Equal(t, []string{"B3"}, store.GetStringSlice("anyl"))
	assert.Nil(t, store.GetStringSlice("s"))
}

func TestConfigStore_SaveLoadPath(t *testing.T) {
	store := NewConfigStore()
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("index.top_k", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("index.top_k")
		}()
	}
	wg.Wait()

	_, ok := store.Get("index.top_k")
	assert.True(t, ok)
}
