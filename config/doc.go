// Package config loads build configuration documents.
//
// The package uses an interface-based design with three extension points:
//   - Parser: deserializes raw data, with path navigation support
//   - DataFetcher: retrieves raw config data (file, memory, etc.)
//   - BaseDirProvider: optional, tells where relative paths in the document point
//
// Provider chains them: fetch, parse into a Document, apply overlays, then hand the
// Document and base directory to a Resolver such as plan.Resolve.
//
// # Path Navigation
//
// Paths use colon (:) as the separator and select a section of a larger file:
//
//	"frontend:build"            -> config["frontend"]["build"]
//	""                          -> entire document
//
// # Example
//
//	provider := config.Provider(plan.Resolve, "frontend:build", config.Set("mode", "development"))
//	fetcher, err := filefetcher.NewFetcher("tools.yaml")()
//	built, err := provider(yamlparser.NewParser(), fetcher)
package config
