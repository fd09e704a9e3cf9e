// Package file provides a file-based DataFetcher implementation for the config package.
//
// The file is read at construction time and cached, so every Fetch returns the same
// data for the lifetime of a build or dev-server session. The directory holding the
// file is reported as the base directory that relative paths in the document refer to.
//
// Usage:
//
//	fetcher, err := file.NewFetcher("build.yaml")()
//	if err != nil {
//	    // Handle error: file not found, permission denied, path is directory, etc.
//	}
//	data, err := fetcher.Fetch()
//	base := fetcher.BaseDir()
//
// An optional .env file next to the configuration can be read with Env.
package file
