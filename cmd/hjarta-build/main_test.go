package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()

	for name, contents := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o600))
	}

	return dir
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	opts, code, done := parseFlags([]string{"-config", "site/build.yaml", "-serve", "-mode", "development"}, &stdout, &stderr)
	require.False(t, done)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "site/build.yaml", opts.configPath)
	assert.True(t, opts.serve)
	assert.Equal(t, "development", opts.mode)
}

func TestParseFlags_Defaults(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	opts, _, done := parseFlags(nil, &stdout, &stderr)
	require.False(t, done)
	assert.Equal(t, "build.yaml", opts.configPath)
	assert.False(t, opts.print)
}

func TestParseFlags_Exits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		args   []string
		code   int
		stdout string
	}{
		{name: "version", args: []string{"-version"}, code: exitOK, stdout: "hjarta-build dev (compiled unknown)\n"},
		{name: "help", args: []string{"-h"}, code: exitOK},
		{name: "unknown flag", args: []string{"-watch"}, code: exitUsage},
		{name: "extra argument", args: []string{"build.yaml"}, code: exitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer

			_, code, done := parseFlags(tt.args, &stdout, &stderr)
			require.True(t, done)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.stdout, stdout.String())
		})
	}
}

func TestResolvePlan_PrintUsesEnvFile(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"build.yaml": "entry: ./index.js\noutput:\n  path: docs\n",
		".env":       "BUILD_MODE=development\nLOG_LEVEL=debug\nLOG_FORMAT=text\n",
	})

	var stdout, stderr bytes.Buffer

	opts := options{configPath: filepath.Join(dir, "build.yaml"), print: true}

	built, code := resolvePlan(&opts, &stdout, &stderr)
	require.NotNil(t, built, stderr.String())
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "debug", opts.logLevel)
	assert.Equal(t, "text", opts.logFormat)

	var printed map[string]any

	require.NoError(t, yaml.Unmarshal(stdout.Bytes(), &printed))
	assert.Equal(t, "development", printed["mode"])
	assert.Equal(t, filepath.Join(dir, "docs"), printed["outputDirectory"])
}

func TestResolvePlan_FlagBeatsEnvFile(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"build.yaml": "entry: ./index.js\n",
		".env":       "BUILD_MODE=development\n",
	})

	var stdout, stderr bytes.Buffer

	opts := options{configPath: filepath.Join(dir, "build.yaml"), mode: "none"}

	built, code := resolvePlan(&opts, &stdout, &stderr)
	require.NotNil(t, built)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "none", string(built.Mode()))
	assert.Empty(t, stdout.String())
}

func TestResolvePlan_Section(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"site.yaml": "frontend:\n  build:\n    entry: ./src/main.ts\n    mode: none\n",
	})

	var stdout, stderr bytes.Buffer

	opts := options{configPath: filepath.Join(dir, "site.yaml"), section: "frontend:build"}

	built, _ := resolvePlan(&opts, &stdout, &stderr)
	require.NotNil(t, built, stderr.String())
	assert.Equal(t, "./src/main.ts", built.Entry())
}

func TestResolvePlan_ListsEveryError(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"build.yaml": "entry: ./index.js\nmode: fast\ndevServer:\n  port: 70000\n",
	})

	var stdout, stderr bytes.Buffer

	opts := options{configPath: filepath.Join(dir, "build.yaml"), mode: ""}

	built, code := resolvePlan(&opts, &stdout, &stderr)
	require.Nil(t, built)
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, stderr.String(), "2 configuration error(s)")
	assert.Contains(t, stderr.String(), "mode: InvalidMode")
	assert.Contains(t, stderr.String(), "devServer.port: InvalidPort")
}

func TestResolvePlan_MissingFile(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	opts := options{configPath: filepath.Join(t.TempDir(), "missing.yaml")}

	built, code := resolvePlan(&opts, &stdout, &stderr)
	require.Nil(t, built)
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, stderr.String(), "missing.yaml")
}
