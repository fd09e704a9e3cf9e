package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockParser struct {
	parseFunc func(data []byte, target any, path string) error
}

func (m *mockParser) Parse(data []byte, target any, path string) error {
	return m.parseFunc(data, target, path)
}

type mockDataFetcher struct {
	fetchFunc func() ([]byte, error)
	baseDir   string
}

func (m *mockDataFetcher) Fetch() ([]byte, error) {
	return m.fetchFunc()
}

func (m *mockDataFetcher) BaseDir() string {
	return m.baseDir
}

type bareFetcher struct{}

func (bareFetcher) Fetch() ([]byte, error) {
	return []byte("data"), nil
}

func fillDocument(values Document) func([]byte, any, string) error {
	return func(_ []byte, target any, _ string) error {
		doc, ok := target.(*Document)
		if !ok {
			return errors.New("invalid target type")
		}

		*doc = values

		return nil
	}
}

func staticData() func() ([]byte, error) {
	return func() ([]byte, error) {
		return []byte("data"), nil
	}
}

type resolved struct {
	entry   string
	mode    any
	baseDir string
}

func resolveStub(doc map[string]any, baseDir string) (resolved, error) {
	entry, _ := doc["entry"].(string)

	return resolved{entry: entry, mode: doc["mode"], baseDir: baseDir}, nil
}

func TestProvider_Success(t *testing.T) {
	t.Parallel()

	parser := &mockParser{parseFunc: fillDocument(Document{"entry": "./index.js"})}
	fetcher := &mockDataFetcher{fetchFunc: staticData(), baseDir: "/repo"}

	provider := Provider[resolved](resolveStub, "frontend:build")

	result, err := provider(parser, fetcher)
	require.NoError(t, err)

	assert.Equal(t, resolved{entry: "./index.js", baseDir: "/repo"}, result)
}

func TestProvider_PassesPathToParser(t *testing.T) {
	t.Parallel()

	var gotPath string

	parser := &mockParser{
		parseFunc: func(_ []byte, _ any, path string) error {
			gotPath = path

			return nil
		},
	}
	fetcher := &mockDataFetcher{fetchFunc: staticData(), baseDir: "/repo"}

	_, err := Provider[resolved](resolveStub, "frontend:build")(parser, fetcher)
	require.NoError(t, err)

	assert.Equal(t, "frontend:build", gotPath)
}

func TestProvider_Overlays(t *testing.T) {
	t.Parallel()

	original := Document{"entry": "./index.js", "mode": "production"}
	parser := &mockParser{parseFunc: fillDocument(original)}
	fetcher := &mockDataFetcher{fetchFunc: staticData(), baseDir: "/repo"}

	t.Run("overlay replaces value", func(t *testing.T) {
		t.Parallel()

		result, err := Provider[resolved](resolveStub, "", Set("mode", "development"))(parser, fetcher)
		require.NoError(t, err)

		assert.Equal(t, "development", result.mode)
	})

	t.Run("empty overlay value keeps document", func(t *testing.T) {
		t.Parallel()

		result, err := Provider[resolved](resolveStub, "", Set("mode", ""))(parser, fetcher)
		require.NoError(t, err)

		assert.Equal(t, "production", result.mode)
	})

	t.Run("parsed document is not modified", func(t *testing.T) {
		t.Parallel()

		_, err := Provider[resolved](resolveStub, "", Set("entry", "./other.js"))(parser, fetcher)
		require.NoError(t, err)

		assert.Equal(t, "./index.js", original["entry"])
	})
}

func TestProvider_Errors(t *testing.T) {
	t.Parallel()

	fetchErr := errors.New("fetch failed")
	parseErr := errors.New("parse failed")
	resolveErr := errors.New("resolve failed")

	tests := []struct {
		name       string
		fetchFunc  func() ([]byte, error)
		parseFunc  func(data []byte, target any, path string) error
		resolveErr error
		wantErr    error
		wantPrefix string
	}{
		{
			name: "fetch error",
			fetchFunc: func() ([]byte, error) {
				return nil, fetchErr
			},
			parseFunc:  fillDocument(Document{}),
			wantErr:    fetchErr,
			wantPrefix: "reading data error",
		},
		{
			name:      "parse error",
			fetchFunc: staticData(),
			parseFunc: func(_ []byte, _ any, _ string) error {
				return parseErr
			},
			wantErr:    parseErr,
			wantPrefix: "parsing error",
		},
		{
			name:       "resolve error",
			fetchFunc:  staticData(),
			parseFunc:  fillDocument(Document{}),
			resolveErr: resolveErr,
			wantErr:    resolveErr,
			wantPrefix: "resolving error",
		},
	}

	for _, testInfo := range tests {
		t.Run(testInfo.name, func(t *testing.T) {
			t.Parallel()

			parser := &mockParser{parseFunc: testInfo.parseFunc}
			fetcher := &mockDataFetcher{fetchFunc: testInfo.fetchFunc, baseDir: "/repo"}

			resolver := func(_ map[string]any, _ string) (*resolved, error) {
				if testInfo.resolveErr != nil {
					return nil, testInfo.resolveErr
				}

				return &resolved{}, nil
			}

			result, err := Provider[*resolved](resolver, "")(parser, fetcher)

			assert.Nil(t, result)
			require.Error(t, err)
			require.ErrorIs(t, err, testInfo.wantErr)
			assert.Contains(t, err.Error(), testInfo.wantPrefix)
		})
	}
}

func TestProvider_RequiresBaseDir(t *testing.T) {
	t.Parallel()

	parser := &mockParser{parseFunc: fillDocument(Document{})}

	t.Run("fetcher without base dir", func(t *testing.T) {
		t.Parallel()

		_, err := Provider[resolved](resolveStub, "")(parser, bareFetcher{})
		require.ErrorIs(t, err, ErrNoBaseDir)
	})

	t.Run("empty base dir", func(t *testing.T) {
		t.Parallel()

		fetcher := &mockDataFetcher{fetchFunc: staticData()}

		_, err := Provider[resolved](resolveStub, "")(parser, fetcher)
		require.ErrorIs(t, err, ErrNoBaseDir)
	})
}

func TestLoad_NullDocument(t *testing.T) {
	t.Parallel()

	parser := &mockParser{parseFunc: func(_ []byte, _ any, _ string) error { return nil }}

	doc, err := Load(parser, bareFetcher{}, "")
	require.NoError(t, err)

	assert.Equal(t, Document{}, doc)
}
