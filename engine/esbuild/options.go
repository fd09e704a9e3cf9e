package esbuild

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/0xalexb/hjarta-build/plan"
	"github.com/evanw/esbuild/pkg/api"
)

// ErrUnsupportedHandler is returned when a rule uses a handler esbuild has no loader for.
var ErrUnsupportedHandler = errors.New("unsupported handler")

// handlerLoaders maps webpack loader names to the esbuild loader that reads the same content.
//
//nolint:gochecknoglobals // lookup table
var handlerLoaders = map[string]api.Loader{
	"css-loader":     api.LoaderCSS,
	"style-loader":   api.LoaderCSS,
	"postcss-loader": api.LoaderCSS,
	"file-loader":    api.LoaderFile,
	"url-loader":     api.LoaderDataURL,
	"raw-loader":     api.LoaderText,
	"json-loader":    api.LoaderJSON,
	"babel-loader":   api.LoaderJSX,
	"ts-loader":      api.LoaderTS,
}

const emptyNamespace = "hjarta-empty"

// Options translates a BuildPlan into esbuild build options.
// The result writes to the plan's output directory and always produces a metafile.
func Options(p *plan.BuildPlan) (api.BuildOptions, error) {
	entryNames, outExtension := entryNaming(p.OutputFilename())

	opts := api.BuildOptions{
		EntryPoints:   []string{p.Entry()},
		AbsWorkingDir: p.BaseDirectory(),
		Outdir:        p.OutputDirectory(),
		EntryNames:    entryNames,
		OutExtension:  outExtension,
		Bundle:        true,
		Write:         true,
		Metafile:      true,
		Platform:      api.PlatformBrowser,
		LogLevel:      api.LogLevelSilent,
	}

	applyMode(&opts, p.Mode())

	aliases, disabled := splitFallbacks(p.Fallbacks())
	if len(aliases) > 0 {
		opts.Alias = aliases
	}

	if len(disabled) > 0 {
		opts.Plugins = append(opts.Plugins, emptyModulesPlugin(disabled))
	}

	if len(p.Rules()) > 0 {
		err := checkHandlers(p.Rules())
		if err != nil {
			return api.BuildOptions{}, err
		}

		opts.AssetNames = assetNaming(p.Rules())
		opts.Plugins = append(opts.Plugins, rulesPlugin(p))
	}

	return opts, nil
}

func applyMode(opts *api.BuildOptions, mode plan.Mode) {
	switch mode {
	case plan.ModeProduction:
		opts.MinifyWhitespace = true
		opts.MinifyIdentifiers = true
		opts.MinifySyntax = true
		opts.Sourcemap = api.SourceMapNone
		opts.Define = map[string]string{"process.env.NODE_ENV": `"production"`}
	case plan.ModeDevelopment:
		opts.Sourcemap = api.SourceMapLinked
		opts.Define = map[string]string{"process.env.NODE_ENV": `"development"`}
	case plan.ModeNone:
	}
}

func splitFallbacks(fallbacks map[string]plan.Fallback) (map[string]string, []string) {
	aliases := map[string]string{}

	var disabled []string

	for id, fb := range fallbacks {
		if fb.Disabled {
			disabled = append(disabled, id)
		} else {
			aliases[id] = fb.Alias
		}
	}

	return aliases, disabled
}

// loaderFor picks the esbuild loader from the first handler of a loader chain.
func loaderFor(chain []string) (api.Loader, error) {
	if len(chain) == 0 {
		return api.LoaderDefault, nil
	}

	loader, ok := handlerLoaders[chain[0]]
	if !ok {
		return api.LoaderNone, fmt.Errorf("%w: %s", ErrUnsupportedHandler, chain[0])
	}

	return loader, nil
}

func checkHandlers(rules []plan.Rule) error {
	for i, r := range rules {
		for _, h := range r.Handlers {
			if _, ok := handlerLoaders[h]; !ok {
				return fmt.Errorf("module.rules[%d]: %w: %s", i, ErrUnsupportedHandler, h)
			}
		}
	}

	return nil
}

// entryNaming converts an output filename template such as "[name].[contenthash].js"
// into esbuild's EntryNames form, which never carries the extension.
func entryNaming(filename string) (string, map[string]string) {
	ext := path.Ext(filename)

	var outExtension map[string]string

	switch ext {
	case ".js":
		filename = strings.TrimSuffix(filename, ext)
	case ".mjs", ".cjs":
		filename = strings.TrimSuffix(filename, ext)
		outExtension = map[string]string{".js": ext}
	}

	return convertPlaceholders(filename), outExtension
}

// assetNaming reads the name template of the first file-loader rule.
func assetNaming(rules []plan.Rule) string {
	for _, r := range rules {
		name, ok := r.Options["name"].(string)
		if !ok || name == "" {
			continue
		}

		for _, h := range r.Handlers {
			if h == "file-loader" {
				name = strings.TrimSuffix(name, ".[ext]")
				name = strings.TrimSuffix(name, "[ext]")

				return convertPlaceholders(name)
			}
		}
	}

	return ""
}

// convertPlaceholders rewrites webpack placeholders into the esbuild equivalents.
func convertPlaceholders(template string) string {
	replacer := strings.NewReplacer(
		"[path]", "[dir]/",
		"[contenthash]", "[hash]",
		"[chunkhash]", "[hash]",
		"[fullhash]", "[hash]",
	)

	out := replacer.Replace(template)

	for strings.Contains(out, "//") {
		out = strings.ReplaceAll(out, "//", "/")
	}

	return strings.TrimPrefix(out, "/")
}
