package plan

import "maps"

type planView struct {
	Entry           string                `yaml:"entry"`
	Mode            Mode                  `yaml:"mode"`
	OutputDirectory string                `yaml:"outputDirectory"`
	OutputFilename  string                `yaml:"outputFilename"`
	Fallbacks       map[string]any        `yaml:"fallbacks,omitempty"`
	DevServer       *devServerView        `yaml:"devServer,omitempty"`
	Performance     performanceBudgetView `yaml:"performance"`
	Rules           []ruleView            `yaml:"rules,omitempty"`
}

type devServerView struct {
	Hot        bool     `yaml:"hot"`
	LiveReload bool     `yaml:"liveReload"`
	Port       uint16   `yaml:"port"`
	StaticDir  string   `yaml:"staticDir"`
	WatchFiles []string `yaml:"watchFiles,omitempty"`
}

type performanceBudgetView struct {
	MaxEntrypointBytes any   `yaml:"maxEntrypointBytes"`
	MaxAssetBytes      any   `yaml:"maxAssetBytes"`
	Hints              Hints `yaml:"hints"`
}

type ruleView struct {
	Test     string         `yaml:"test"`
	Handlers []string       `yaml:"handlers"`
	Options  map[string]any `yaml:"options,omitempty"`
}

// MarshalYAML renders the plan in the shape of a configuration document,
// with every default filled in and every path absolute.
func (p *BuildPlan) MarshalYAML() (any, error) {
	view := planView{
		Entry:           p.entry,
		Mode:            p.mode,
		OutputDirectory: p.outputDirectory,
		OutputFilename:  p.outputFilename,
		Performance: performanceBudgetView{
			MaxEntrypointBytes: budgetValue(p.performance.MaxEntrypointBytes),
			MaxAssetBytes:      budgetValue(p.performance.MaxAssetBytes),
			Hints:              p.performance.Hints,
		},
	}

	if len(p.fallbacks) > 0 {
		view.Fallbacks = make(map[string]any, len(p.fallbacks))

		for id, fb := range p.fallbacks {
			if fb.Disabled {
				view.Fallbacks[id] = false
			} else {
				view.Fallbacks[id] = fb.Alias
			}
		}
	}

	if ds, ok := p.DevServer(); ok {
		view.DevServer = &devServerView{
			Hot:        ds.Hot,
			LiveReload: ds.LiveReload,
			Port:       ds.Port,
			StaticDir:  ds.StaticDir,
			WatchFiles: ds.WatchFiles,
		}
	}

	for _, r := range p.rules {
		view.Rules = append(view.Rules, ruleView{
			Test:     r.Pattern.String(),
			Handlers: r.Handlers,
			Options:  maps.Clone(r.Options),
		})
	}

	return view, nil
}

func budgetValue(n uint64) any {
	if n == Unlimited {
		return "unlimited"
	}

	return n
}
