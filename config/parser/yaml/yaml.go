package yaml

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
)

// ErrEmptyData is returned when the input data is empty.
var ErrEmptyData = errors.New("empty data")

// ErrPathNotFound is returned when the specified path is not found in the YAML document.
var ErrPathNotFound = errors.New("path not found")

// Parser implements config.Parser for YAML and JSON documents.
type Parser struct {
	opts []yaml.DecodeOption
}

// NewParser creates a new YAML parser instance.
// Decode options are passed to goccy/go-yaml for every Parse call.
func NewParser(opts ...yaml.DecodeOption) *Parser {
	return &Parser{opts: opts}
}

// Parse parses YAML data and decodes the selected node into target.
// The path parameter specifies a navigation path using colon (:) as separator.
// Empty path decodes the first document.
func (p *Parser) Parse(data []byte, target any, path string) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return ErrEmptyData
	}

	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return fmt.Errorf("unmarshal error: %w", err)
	}

	node, err := p.selectNode(file, path)
	if err != nil {
		return err
	}

	if node == nil {
		return nil
	}

	err = yaml.NodeToValue(node, target, p.opts...)
	if err != nil {
		if path == "" {
			return fmt.Errorf("unmarshal error: %w", err)
		}

		return fmt.Errorf("reading path %q: %w", path, err)
	}

	return nil
}

func (p *Parser) selectNode(file *ast.File, path string) (ast.Node, error) {
	if path == "" {
		if len(file.Docs) == 0 {
			return nil, ErrEmptyData
		}

		return file.Docs[0].Body, nil
	}

	yamlPath, err := yaml.PathString(convertToYAMLPath(path))
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", path, err)
	}

	node, err := yamlPath.FilterFile(file)
	if err != nil {
		if yaml.IsNotFoundNodeError(err) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}

		return nil, fmt.Errorf("reading path %q: %w", path, err)
	}

	if node == nil {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}

	return node, nil
}

// convertToYAMLPath converts a colon-separated path to goccy/go-yaml PathString format.
// Examples:
//   - "build" -> "$.build"
//   - "frontend:build" -> "$.frontend.build"
func convertToYAMLPath(path string) string {
	return "$." + strings.ReplaceAll(path, ":", ".")
}
