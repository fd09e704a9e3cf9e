package plan

import (
	"log/slog"
	"maps"
	"math"
	"regexp"
	"slices"
)

// Unlimited is the performance budget used when none is configured.
const Unlimited uint64 = math.MaxUint64

// DefaultOutputFilename is used when output.filename is not set.
const DefaultOutputFilename = "index.js"

// DefaultDevServerPort is used when devServer.port is not set.
const DefaultDevServerPort uint16 = 8080

// Mode governs the optimizations applied by the bundling engine.
type Mode string

// Recognized modes.
const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
	ModeNone        Mode = "none"
)

// Valid reports whether m is one of the recognized modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeDevelopment, ModeProduction, ModeNone:
		return true
	default:
		return false
	}
}

// Hints controls how the engine reacts to an exceeded performance budget.
type Hints string

// Recognized hint levels.
const (
	HintsOff     Hints = "off"
	HintsWarning Hints = "warning"
	HintsError   Hints = "error"
)

// Fallback replaces a module identifier during resolution.
// Disabled means the module resolves to an empty module; otherwise Alias names the substitute.
type Fallback struct {
	Disabled bool
	Alias    string
}

// DevServer holds the settings of a watch/serve session.
type DevServer struct {
	Hot        bool
	LiveReload bool
	Port       uint16
	StaticDir  string
	WatchFiles []string
}

// PerformanceBudget holds size thresholds for emitted assets.
type PerformanceBudget struct {
	MaxEntrypointBytes uint64
	MaxAssetBytes      uint64
	Hints              Hints
}

// Rule applies an ordered chain of handlers to the files its pattern matches.
// Handlers are listed as declared: the last one runs first and each earlier one wraps its output.
type Rule struct {
	Pattern  *regexp.Regexp
	Handlers []string
	Options  map[string]any
}

// Matches reports whether the rule applies to name.
func (r Rule) Matches(name string) bool {
	return r.Pattern != nil && r.Pattern.MatchString(name)
}

func (r Rule) clone() Rule {
	return Rule{
		Pattern:  r.Pattern,
		Handlers: slices.Clone(r.Handlers),
		Options:  cloneMap(r.Options),
	}
}

// BuildPlan is the normalized, validated result of resolving a build configuration.
// It is never mutated after Resolve returns; accessors hand out copies.
type BuildPlan struct {
	entry           string
	mode            Mode
	outputFilename  string
	outputDirectory string
	baseDirectory   string
	fallbacks       map[string]Fallback
	devServer       *DevServer
	performance     PerformanceBudget
	rules           []Rule
}

// Entry returns the entry module path as written in the configuration.
func (p *BuildPlan) Entry() string {
	return p.entry
}

// Mode returns the build mode.
func (p *BuildPlan) Mode() Mode {
	return p.mode
}

// OutputFilename returns the output filename template, placeholders unexpanded.
func (p *BuildPlan) OutputFilename() string {
	return p.outputFilename
}

// OutputDirectory returns the absolute output directory.
func (p *BuildPlan) OutputDirectory() string {
	return p.outputDirectory
}

// BaseDirectory returns the absolute directory relative paths were resolved against.
func (p *BuildPlan) BaseDirectory() string {
	return p.baseDirectory
}

// Fallbacks returns a copy of the module fallback table.
func (p *BuildPlan) Fallbacks() map[string]Fallback {
	return maps.Clone(p.fallbacks)
}

// DevServer returns the dev server settings and whether they were configured.
func (p *BuildPlan) DevServer() (DevServer, bool) {
	if p.devServer == nil {
		return DevServer{}, false
	}

	ds := *p.devServer
	ds.WatchFiles = slices.Clone(p.devServer.WatchFiles)

	return ds, true
}

// Performance returns the performance budget.
func (p *BuildPlan) Performance() PerformanceBudget {
	return p.performance
}

// Rules returns a copy of the rules in declaration order.
func (p *BuildPlan) Rules() []Rule {
	rules := make([]Rule, len(p.rules))
	for i, r := range p.rules {
		rules[i] = r.clone()
	}

	return rules
}

// MatchingRules returns the rules that apply to name, in declaration order.
func (p *BuildPlan) MatchingRules(name string) []Rule {
	var matched []Rule

	for _, r := range p.rules {
		if r.Matches(name) {
			matched = append(matched, r.clone())
		}
	}

	return matched
}

// LoaderChain returns the handlers applied to name in execution order.
// Handlers of every matching rule are concatenated in declaration order and then
// reversed, so the first declared handler wraps the output of all the others.
func (p *BuildPlan) LoaderChain(name string) []string {
	var handlers []string

	for _, r := range p.rules {
		if r.Matches(name) {
			handlers = append(handlers, r.Handlers...)
		}
	}

	slices.Reverse(handlers)

	return handlers
}

// LogValue implements slog.LogValuer.
func (p *BuildPlan) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("entry", p.entry),
		slog.String("mode", string(p.mode)),
		slog.String("output", p.outputDirectory),
		slog.String("filename", p.outputFilename),
		slog.Int("fallbacks", len(p.fallbacks)),
		slog.Int("rules", len(p.rules)),
	}

	if p.devServer != nil {
		attrs = append(attrs, slog.Int("dev_server_port", int(p.devServer.Port)))
	}

	return slog.GroupValue(attrs...)
}
