package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "pilah")

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())
}

func TestConfigStore_LoadsNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := `
[camera]
stream_url = "http://192.168.4.102:81/stream"
width = 640

[preprocess]
alpha = 1.2
beta = 30

[detector]
classes = ["organik", "anorganik", "B3"]

[server]
watch = true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://192.168.4.102:81/stream", store.GetString("camera.stream_url"))
	assert.Equal(t, 640, store.GetInt("camera.width"))
	assert.InDelta(t, 1.2, store.GetFloat("preprocess.alpha"), 1e-9)
	assert.InDelta(t, 30, store.GetFloat("preprocess.beta"), 1e-9)
	assert.Equal(t, []string{"organik", "anorganik", "B3"}, store.GetStringSlice("detector.classes"))
	assert.True(t, store.GetBool("server.watch"))

	assert.Equal(t, "", store.GetString("camera.width"))
	assert.Equal(t, 0, store.GetInt("camera.stream_url"))
	assert.Zero(t, store.GetFloat("missing"))
	assert.False(t, store.GetBool("missing"))
	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_SetPersistsAsTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("serial.port", "COM4"))
	require.NoError(t, store.Set("serial.baud", 9600))
	require.NoError(t, store.Set("index.min_similarity", 0.25))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[serial]")
	assert.Contains(t, string(data), "[index]")

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "COM4", reopened.GetString("serial.port"))
	assert.Equal(t, 9600, reopened.GetInt("serial.baud"))
	assert.InDelta(t, 0.25, reopened.GetFloat("index.min_similarity"), 1e-9)
	assert.Equal(t, []string{"index.min_similarity", "serial.baud", "serial.port"}, reopened.Keys())
}

func TestConfigStore_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[camera\nbroken"), 0600))

	_, err := NewConfigStore(dir)
	assert.Error(t, err)
}

func TestFlattenUnflattenMap(t *testing.T) {
	nested := map[string]any{
		"camera": map[string]any{"backend": "mjpeg"},
		"llm":    map[string]any{"provider": "gemini", "model": "gemini-1.5-flash"},
		"top":    "level",
	}

	flat := flattenMap(nested, "")
	assert.Equal(t, map[string]any{
		"camera.backend": "mjpeg",
		"llm.provider":   "gemini",
		"llm.model":      "gemini-1.5-flash",
		"top":            "level",
	}, flat)

	back, err := unflattenMap(flat)
	require.NoError(t, err)
	assert.Equal(t, nested, back)
}

func TestUnflattenMap_Conflict(t *testing.T) {
	_, err := unflattenMap(map[string]any{"serial": "COM3", "serial.baud": 9600})
	assert.Error(t, err)
}
