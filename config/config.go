package config

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
)

// ErrNoBaseDir is returned when the DataFetcher cannot tell where its document lives.
var ErrNoBaseDir = errors.New("data fetcher does not provide a base directory")

// Parser defines an interface for parsing configuration data into a target structure.
//
// The path parameter specifies a navigation path within the configuration data
// using colon (:) as the separator for nested keys. For example:
//   - "frontend:build" navigates to config["frontend"]["build"]
//   - "" (empty path) means parse the entire document
//
// Parser implementations are responsible for path navigation internally.
type Parser interface {
	Parse(data []byte, target any, path string) error
}

// DataFetcher defines an interface for reading configuration data.
type DataFetcher interface {
	Fetch() ([]byte, error)
}

// BaseDirProvider is implemented by fetchers that know the absolute directory
// relative paths in their document refer to.
type BaseDirProvider interface {
	BaseDir() string
}

// Document is an untyped configuration tree as decoded from YAML or JSON.
type Document map[string]any

// Overlay adjusts a decoded Document before it is resolved.
type Overlay func(doc Document)

// Resolver turns a decoded Document into a typed value.
// Relative paths in the document are interpreted against baseDir.
type Resolver[T any] func(doc map[string]any, baseDir string) (T, error)

// Provider returns a function that reads, parses, overlays and resolves a configuration document.
// The returned function is Fx-friendly: its Parser and DataFetcher arguments are injected.
func Provider[T any](resolve Resolver[T], path string, overlays ...Overlay) func(Parser, DataFetcher) (T, error) {
	return func(parser Parser, fetcher DataFetcher) (T, error) {
		var zero T

		baseDir, err := baseDirOf(fetcher)
		if err != nil {
			return zero, err
		}

		doc, err := Load(parser, fetcher, path)
		if err != nil {
			return zero, err
		}

		if len(overlays) > 0 {
			doc = maps.Clone(doc)

			for _, apply := range overlays {
				apply(doc)
			}

			slog.Debug("overlays applied", slog.String("path", path), slog.Int("count", len(overlays)))
		}

		result, err := resolve(doc, baseDir)
		if err != nil {
			return zero, fmt.Errorf("resolving error: %w", err)
		}

		return result, nil
	}
}

// Load fetches and parses a configuration document without resolving it.
func Load(parser Parser, fetcher DataFetcher, path string) (Document, error) {
	data, err := fetcher.Fetch()
	if err != nil {
		return nil, fmt.Errorf("reading data error: %w", err)
	}

	var doc Document

	err = parser.Parse(data, &doc, path)
	if err != nil {
		return nil, fmt.Errorf("parsing error: %w", err)
	}

	if doc == nil {
		doc = Document{}
	}

	return doc, nil
}

// Set returns an Overlay that assigns value to key when value is not empty.
func Set(key, value string) Overlay {
	return func(doc Document) {
		if value != "" {
			doc[key] = value
		}
	}
}

func baseDirOf(fetcher DataFetcher) (string, error) {
	provider, ok := fetcher.(BaseDirProvider)
	if !ok || provider.BaseDir() == "" {
		return "", ErrNoBaseDir
	}

	return provider.BaseDir(), nil
}
