// Package yaml provides a YAML parser implementation for the config package.
//
// Documents are parsed into a goccy/go-yaml AST, the requested section is selected
// with a YAML path and the resulting node is decoded into the target. JSON is a
// subset of YAML, so webpack-style JSON configuration files parse as well.
//
// Usage:
//
//	parser := yaml.NewParser()
//	var doc config.Document
//	err := parser.Parse(data, &doc, "frontend:build")
//
// Path Conversion:
//   - Empty path "" -> first document
//   - Single key "build" -> "$.build"
//   - Nested path "frontend:build" -> "$.frontend.build"
package yaml
