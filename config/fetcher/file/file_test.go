package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name string, content []byte) string {
	t.Helper()

	configPath := filepath.Join(dir, name)

	err := os.WriteFile(configPath, content, 0o600)
	require.NoError(t, err)

	return configPath
}

func TestFetcher_Fetch_Success(t *testing.T) {
	t.Parallel()

	content := []byte(`
entry: ./index.js
mode: production
`)

	tmpDir := t.TempDir()
	configPath := writeConfig(t, tmpDir, "build.yaml", content)

	fetcher, err := NewFetcher(configPath)()
	require.NoError(t, err)

	data, err := fetcher.Fetch()

	require.NoError(t, err)
	assert.Equal(t, content, data)
	assert.Equal(t, configPath, fetcher.Path())
	assert.Equal(t, tmpDir, fetcher.BaseDir())
}

func TestFetcher_FileNotFound(t *testing.T) {
	t.Parallel()

	fetcher, err := NewFetcher("/nonexistent/path/build.yaml")()

	require.Error(t, err)
	assert.Nil(t, fetcher)
	assert.Contains(t, err.Error(), "stat file")
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestFetcher_DirectoryPath(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()

	fetcher, err := NewFetcher(tmpDir)()

	require.Error(t, err)
	assert.Nil(t, fetcher)
	require.ErrorIs(t, err, ErrPathIsDirectory)
	assert.Contains(t, err.Error(), "is a directory")
}

func TestFetcher_BaseDirIsAbsolute(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "build.yaml", []byte("entry: ./index.js\n"))

	nested := filepath.Join(tmpDir, "sub", "..", "build.yaml")

	fetcher, err := NewFetcher(nested)()
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(fetcher.BaseDir()))
	assert.Equal(t, tmpDir, fetcher.BaseDir())
	assert.Equal(t, filepath.Join(tmpDir, "build.yaml"), fetcher.Path())
}

func TestFetcher_Fetch_EmptyFile(t *testing.T) {
	t.Parallel()

	configPath := writeConfig(t, t.TempDir(), "empty.yaml", []byte{})

	fetcher, err := NewFetcher(configPath)()
	require.NoError(t, err)

	data, err := fetcher.Fetch()

	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestFetcher_Fetch_FileModifiedAfterConstruction_ReturnsCachedData(t *testing.T) {
	t.Parallel()

	originalContent := []byte(`mode: production`)
	modifiedContent := []byte(`mode: development`)

	configPath := writeConfig(t, t.TempDir(), "build.yaml", originalContent)

	fetcher, err := NewFetcher(configPath)()
	require.NoError(t, err)

	err = os.WriteFile(configPath, modifiedContent, 0o600)
	require.NoError(t, err)

	data, err := fetcher.Fetch()
	require.NoError(t, err)

	assert.Equal(t, originalContent, data, "Fetch should return cached data, not current file content")
}

func TestFetcher_Fetch_ReturnsCopy_MutationSafe(t *testing.T) {
	t.Parallel()

	content := []byte(`entry: ./index.js`)
	configPath := writeConfig(t, t.TempDir(), "build.yaml", content)

	fetcher, err := NewFetcher(configPath)()
	require.NoError(t, err)

	data1, err := fetcher.Fetch()
	require.NoError(t, err)

	data1[0] = 'X'

	data2, err := fetcher.Fetch()
	require.NoError(t, err)

	assert.Equal(t, content, data2, "Fetch should return unmodified cached data")
}

func TestFetcher_Env(t *testing.T) {
	t.Parallel()

	t.Run("reads dotenv next to the config", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		configPath := writeConfig(t, tmpDir, "build.yaml", []byte("entry: ./index.js\n"))
		writeConfig(t, tmpDir, EnvFileName, []byte("BUILD_MODE=development\nLOG_LEVEL=debug\n"))

		fetcher, err := NewFetcher(configPath)()
		require.NoError(t, err)

		env, err := fetcher.Env()
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"BUILD_MODE": "development", "LOG_LEVEL": "debug"}, env)
	})

	t.Run("missing dotenv is empty", func(t *testing.T) {
		t.Parallel()

		configPath := writeConfig(t, t.TempDir(), "build.yaml", []byte("entry: ./index.js\n"))

		fetcher, err := NewFetcher(configPath)()
		require.NoError(t, err)

		env, err := fetcher.Env()
		require.NoError(t, err)
		assert.Empty(t, env)
	})

	t.Run("dotenv is a directory", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		configPath := writeConfig(t, tmpDir, "build.yaml", []byte("entry: ./index.js\n"))
		require.NoError(t, os.Mkdir(filepath.Join(tmpDir, EnvFileName), 0o700))

		fetcher, err := NewFetcher(configPath)()
		require.NoError(t, err)

		_, err = fetcher.Env()
		require.Error(t, err)
	})
}
