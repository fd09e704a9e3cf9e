package esbuild

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/0xalexb/hjarta-build/plan"
	"github.com/evanw/esbuild/pkg/api"
)

// emptyModulesPlugin resolves every disabled fallback to an empty module.
func emptyModulesPlugin(ids []string) api.Plugin {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = regexp.QuoteMeta(id)
	}

	slices.Sort(quoted)

	filter := "^(" + strings.Join(quoted, "|") + ")$"

	return api.Plugin{
		Name: "hjarta-fallbacks",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: filter},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					return api.OnResolveResult{Path: args.Path, Namespace: emptyNamespace}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: emptyNamespace},
				func(api.OnLoadArgs) (api.OnLoadResult, error) {
					contents := ""

					return api.OnLoadResult{Contents: &contents, Loader: api.LoaderJS}, nil
				})
		},
	}
}

// rulesPlugin registers one load callback per rule, in declaration order.
// Esbuild filters are Go regular expressions, so the compiled rule pattern is used as is.
// The loader comes from the full chain of every rule matching the file.
func rulesPlugin(p *plan.BuildPlan) api.Plugin {
	rules := p.Rules()

	return api.Plugin{
		Name: "hjarta-rules",
		Setup: func(build api.PluginBuild) {
			for _, rule := range rules {
				build.OnLoad(api.OnLoadOptions{Filter: rule.Pattern.String(), Namespace: "file"},
					func(args api.OnLoadArgs) (api.OnLoadResult, error) {
						return loadWithRules(p, args.Path)
					})
			}
		},
	}
}

func loadWithRules(p *plan.BuildPlan, file string) (api.OnLoadResult, error) {
	loader, err := loaderFor(p.LoaderChain(file))
	if err != nil {
		return api.OnLoadResult{}, err
	}

	data, err := os.ReadFile(file) // #nosec G304 -- path comes from the bundler's resolver
	if err != nil {
		return api.OnLoadResult{}, fmt.Errorf("reading %q: %w", file, err)
	}

	contents := string(data)
	resolveDir := filepath.Dir(file)

	return api.OnLoadResult{
		Contents:   &contents,
		ResolveDir: resolveDir,
		Loader:     loader,
	}, nil
}
