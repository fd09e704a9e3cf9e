// Package plan resolves declarative bundler configuration into an immutable BuildPlan.
//
// The input is an untyped document as produced by a YAML or JSON decoder, shaped like
// a webpack configuration:
//
//	entry: ./index.js
//	mode: production
//	output:
//	  filename: index.js
//	  path: docs
//	resolve:
//	  fallback:
//	    fs: false
//	devServer:
//	  port: 9090
//	  watchFiles: ["./specs/**openapi.yaml"]
//	performance:
//	  maxAssetSize: 2097152
//	module:
//	  rules:
//	    - test: /\.css$/i
//	      use: [style-loader, css-loader]
//
// Resolve applies defaults, resolves paths against an explicit base directory and
// validates every field. A missing entry is reported on its own; all other problems
// are aggregated so that a single call surfaces every mistake in the document.
// Use Errors or HasKind to inspect the returned error.
//
// Rule patterns use RE2 syntax. A pattern written as /source/flags is accepted as
// well; the i, m and s flags map to inline RE2 flags and g, u and y are ignored.
package plan
