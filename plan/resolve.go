package plan

import (
	"fmt"
	"maps"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Resolve validates a decoded build configuration and turns it into a BuildPlan.
//
// Relative paths are resolved against baseDir, which must be absolute. A missing
// entry fails immediately; every other problem is collected, and the returned error
// carries one *ConfigError per offending field (see Errors and HasKind).
// Resolve never touches the filesystem and is safe for concurrent use.
func Resolve(raw map[string]any, baseDir string) (*BuildPlan, error) {
	if !filepath.IsAbs(baseDir) {
		return nil, fmt.Errorf("%w: %q", ErrRelativeBaseDirectory, baseDir)
	}

	entry, ok := raw["entry"].(string)
	if !ok || strings.TrimSpace(entry) == "" {
		return nil, &ConfigError{
			Kind:    KindMissingEntry,
			Field:   "entry",
			Message: "entry must be a non-empty string",
		}
	}

	baseDir = filepath.Clean(baseDir)

	var errs collector

	built := &BuildPlan{
		entry:         entry,
		baseDirectory: baseDir,
	}

	built.mode = resolveMode(raw["mode"], &errs)
	built.outputDirectory, built.outputFilename = resolveOutput(raw["output"], baseDir, &errs)
	built.fallbacks = resolveFallbacks(raw["resolve"], &errs)
	built.devServer = resolveDevServer(raw["devServer"], baseDir, built.outputDirectory, &errs)
	built.performance = resolvePerformance(raw["performance"], built.mode, &errs)
	built.rules = resolveRules(raw["module"], &errs)

	if errs.err != nil {
		return nil, errs.err
	}

	return built, nil
}

func resolveMode(value any, errs *collector) Mode {
	if value == nil {
		return ModeProduction
	}

	s, ok := value.(string)
	if !ok {
		errs.add(KindInvalidMode, "mode", "expected one of development, production, none, got %s", describe(value))

		return ModeProduction
	}

	mode := Mode(s)
	if !mode.Valid() {
		errs.add(KindInvalidMode, "mode", "unknown mode %q", s)

		return ModeProduction
	}

	return mode
}

func resolvePath(baseDir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}

	return filepath.Join(baseDir, p)
}

func resolveOutput(value any, baseDir string, errs *collector) (string, string) {
	dir, filename := baseDir, DefaultOutputFilename

	if value == nil {
		return dir, filename
	}

	output, ok := mapping(value)
	if !ok {
		errs.typeMismatch("output", "mapping", value)

		return dir, filename
	}

	switch p := output["path"].(type) {
	case nil:
	case string:
		dir = resolvePath(baseDir, p)
	default:
		errs.typeMismatch("output.path", "string", p)
	}

	switch f := output["filename"].(type) {
	case nil:
	case string:
		if f != "" {
			filename = f
		}
	default:
		errs.typeMismatch("output.filename", "string", f)
	}

	return dir, filename
}

func resolveFallbacks(value any, errs *collector) map[string]Fallback {
	fallbacks := map[string]Fallback{}

	if value == nil {
		return fallbacks
	}

	section, ok := mapping(value)
	if !ok {
		errs.typeMismatch("resolve", "mapping", value)

		return fallbacks
	}

	if section["fallback"] == nil {
		return fallbacks
	}

	table, ok := mapping(section["fallback"])
	if !ok {
		errs.add(KindInvalidFallback, "resolve.fallback", "expected mapping, got %s", describe(section["fallback"]))

		return fallbacks
	}

	for _, id := range slices.Sorted(maps.Keys(table)) {
		name := field("resolve.fallback", id)
		target := table[id]

		switch t := target.(type) {
		case bool:
			if t {
				errs.add(KindInvalidFallback, name, "only false may be used to disable a module")

				continue
			}

			fallbacks[id] = Fallback{Disabled: true}
		case string:
			if t == "" {
				errs.add(KindInvalidFallback, name, "substitute module must not be empty")

				continue
			}

			fallbacks[id] = Fallback{Alias: t}
		default:
			errs.add(KindInvalidFallback, name, "expected false or a module name, got %s", describe(target))
		}
	}

	return fallbacks
}

func resolveDevServer(value any, baseDir, outputDir string, errs *collector) *DevServer {
	if value == nil {
		return nil
	}

	section, ok := mapping(value)
	if !ok {
		errs.typeMismatch("devServer", "mapping", value)

		return nil
	}

	server := &DevServer{
		Port:       DefaultDevServerPort,
		StaticDir:  outputDir,
		WatchFiles: []string{},
	}

	server.Hot = flag(section, "devServer", "hot", errs)
	server.LiveReload = flag(section, "devServer", "liveReload", errs)

	if raw, present := section["port"]; present && raw != nil {
		port, isInt := integer(raw)

		switch {
		case !isInt:
			errs.add(KindInvalidPort, "devServer.port", "expected integer, got %s", describe(raw))
		case port < 0 || port > 65535:
			errs.add(KindInvalidPort, "devServer.port", "port %d out of range [0, 65535]", port)
		default:
			server.Port = uint16(port)
		}
	}

	staticKey := "static"
	if _, present := section["staticDir"]; present {
		staticKey = "staticDir"
	}

	switch s := section[staticKey].(type) {
	case nil:
	case string:
		if s != "" {
			server.StaticDir = resolvePath(baseDir, s)
		}
	default:
		errs.typeMismatch(field("devServer", staticKey), "string", s)
	}

	server.WatchFiles = resolveWatchFiles(section["watchFiles"], errs)

	return server
}

func flag(section map[string]any, parent, key string, errs *collector) bool {
	switch v := section[key].(type) {
	case nil:
		return false
	case bool:
		return v
	default:
		errs.typeMismatch(field(parent, key), "bool", v)

		return false
	}
}

func resolveWatchFiles(value any, errs *collector) []string {
	patterns := []string{}

	if value == nil {
		return patterns
	}

	switch value.(type) {
	case string, map[string]any, map[any]any:
		value = []any{value}
	}

	items, ok := list(value)
	if !ok {
		errs.add(KindInvalidWatchPattern, "devServer.watchFiles", "expected list of globs, got %s", describe(value))

		return patterns
	}

	for i, item := range items {
		name := index("devServer.watchFiles", i)

		pattern, isString := item.(string)

		switch {
		case !isString:
			errs.add(KindInvalidWatchPattern, name, "expected glob string, got %s", describe(item))
		case strings.TrimSpace(pattern) == "":
			errs.add(KindInvalidWatchPattern, name, "pattern must not be empty")
		case !doublestar.ValidatePattern(filepath.ToSlash(pattern)):
			errs.add(KindInvalidWatchPattern, name, "malformed glob %q", pattern)
		default:
			patterns = append(patterns, pattern)
		}
	}

	return patterns
}

func resolvePerformance(value any, mode Mode, errs *collector) PerformanceBudget {
	budget := PerformanceBudget{
		MaxEntrypointBytes: Unlimited,
		MaxAssetBytes:      Unlimited,
		Hints:              HintsOff,
	}

	if mode == ModeProduction {
		budget.Hints = HintsWarning
	}

	if value == nil {
		return budget
	}

	section, ok := mapping(value)
	if !ok {
		errs.typeMismatch("performance", "mapping", value)

		return budget
	}

	budget.MaxEntrypointBytes = sizeLimit(section, "maxEntrypointSize", "maxEntrypointBytes", errs)
	budget.MaxAssetBytes = sizeLimit(section, "maxAssetSize", "maxAssetBytes", errs)

	switch h := section["hints"].(type) {
	case nil:
	case bool:
		if h {
			errs.add(KindInvalidBudget, "performance.hints", "expected warning, error or false")
		} else {
			budget.Hints = HintsOff
		}
	case string:
		switch Hints(h) {
		case HintsWarning, HintsError:
			budget.Hints = Hints(h)
		case HintsOff, "false":
			budget.Hints = HintsOff
		default:
			errs.add(KindInvalidBudget, "performance.hints", "unknown hint level %q", h)
		}
	default:
		errs.add(KindInvalidBudget, "performance.hints", "expected warning, error or false, got %s", describe(h))
	}

	return budget
}

// sizeLimit reads a byte budget stored under either of two equivalent keys.
func sizeLimit(section map[string]any, key, alias string, errs *collector) uint64 {
	name := key

	raw, present := section[key]
	if !present || raw == nil {
		name = alias
		raw = section[alias]
	}

	if raw == nil {
		return Unlimited
	}

	name = field("performance", name)

	if u, ok := raw.(uint64); ok {
		if u == 0 {
			errs.add(KindInvalidBudget, name, "budget must be positive")

			return Unlimited
		}

		return u
	}

	n, ok := integer(raw)

	switch {
	case !ok:
		errs.add(KindInvalidBudget, name, "expected positive integer, got %s", describe(raw))
	case n <= 0:
		errs.add(KindInvalidBudget, name, "budget must be positive, got %d", n)
	default:
		return uint64(n)
	}

	return Unlimited
}

func resolveRules(value any, errs *collector) []Rule {
	rules := []Rule{}

	if value == nil {
		return rules
	}

	section, ok := mapping(value)
	if !ok {
		errs.typeMismatch("module", "mapping", value)

		return rules
	}

	if section["rules"] == nil {
		return rules
	}

	items, ok := list(section["rules"])
	if !ok {
		errs.typeMismatch("module.rules", "list", section["rules"])

		return rules
	}

	for i, item := range items {
		name := index("module.rules", i)

		def, isMap := mapping(item)
		if !isMap {
			errs.typeMismatch(name, "mapping", item)

			continue
		}

		rule, valid := resolveRule(def, name, errs)
		if valid {
			rules = append(rules, rule)
		}
	}

	return rules
}

func resolveRule(def map[string]any, name string, errs *collector) (Rule, bool) {
	before := errs.err

	pattern := resolvePattern(def, name, errs)
	handlers, handlerOptions := resolveHandlers(def, name, errs)

	rule := Rule{
		Pattern:  pattern,
		Handlers: handlers,
		Options:  handlerOptions,
	}

	if raw := def["options"]; raw != nil {
		opts, ok := mapping(raw)
		if !ok {
			errs.typeMismatch(field(name, "options"), "mapping", raw)
		}

		for k, v := range cloneMap(opts) {
			rule.Options[k] = v
		}
	}

	return rule, errs.err == before
}

func resolvePattern(def map[string]any, name string, errs *collector) *regexp.Regexp {
	key := ""

	for _, candidate := range []string{"test", "testPattern"} {
		if def[candidate] == nil {
			continue
		}

		if key != "" {
			errs.add(KindInvalidPattern, name, "rule must declare exactly one of test, testPattern")

			return nil
		}

		key = candidate
	}

	if key == "" {
		errs.add(KindInvalidPattern, name, "rule must declare a test pattern")

		return nil
	}

	name = field(name, key)

	switch p := def[key].(type) {
	case *regexp.Regexp:
		return p
	case string:
		source, err := translatePattern(p)
		if err != nil {
			errs.wrap(KindInvalidPattern, name, fmt.Sprintf("invalid pattern %q", p), err)

			return nil
		}

		re, err := regexp.Compile(source)
		if err != nil {
			errs.wrap(KindInvalidPattern, name, fmt.Sprintf("invalid pattern %q", p), err)

			return nil
		}

		return re
	default:
		errs.add(KindInvalidPattern, name, "expected pattern string, got %s", describe(p))

		return nil
	}
}

const literalFlags = "gimsuy"

// translatePattern accepts either a plain RE2 pattern or a /source/flags literal.
func translatePattern(p string) (string, error) {
	if p == "" {
		return "", errEmptyPattern
	}

	last := strings.LastIndex(p, "/")
	if !strings.HasPrefix(p, "/") || last <= 0 {
		return p, nil
	}

	source, flags := p[1:last], p[last+1:]

	for _, f := range flags {
		if !strings.ContainsRune(literalFlags, f) {
			return p, nil
		}
	}

	if source == "" {
		return "", errEmptyPattern
	}

	var inline strings.Builder

	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			if !strings.ContainsRune(inline.String(), f) {
				inline.WriteRune(f)
			}
		}
	}

	if inline.Len() == 0 {
		return source, nil
	}

	return "(?" + inline.String() + ")" + source, nil
}

// resolveHandlers returns the handler chain of a rule together with any options
// declared inline on {loader, options} entries.
func resolveHandlers(def map[string]any, name string, errs *collector) ([]string, map[string]any) {
	options := map[string]any{}
	key := ""

	for _, candidate := range []string{"handlers", "use", "loader"} {
		if def[candidate] == nil {
			continue
		}

		if key != "" {
			errs.add(KindInvalidType, name, "rule must declare handlers with only one of handlers, use, loader")

			return nil, options
		}

		key = candidate
	}

	if key == "" {
		errs.add(KindEmptyRule, name, "rule declares no handlers")

		return nil, options
	}

	name = field(name, key)
	value := def[key]

	switch value.(type) {
	case string, map[string]any, map[any]any:
		value = []any{value}
	}

	items, ok := list(value)
	if !ok {
		errs.typeMismatch(name, "handler name or list of handler names", value)

		return nil, options
	}

	if len(items) == 0 {
		errs.add(KindEmptyRule, name, "rule declares no handlers")

		return nil, options
	}

	handlers := make([]string, 0, len(items))

	for i, item := range items {
		entry := index(name, i)

		handler, inline, ok := handlerEntry(item)
		if !ok {
			errs.typeMismatch(entry, "non-empty handler name", item)

			continue
		}

		if inline != nil {
			opts, isMap := mapping(inline)
			if !isMap {
				errs.typeMismatch(field(entry, "options"), "mapping", inline)

				continue
			}

			for k, v := range cloneMap(opts) {
				options[k] = v
			}
		}

		handlers = append(handlers, handler)
	}

	return handlers, options
}

// handlerEntry accepts "css-loader" or {loader: "css-loader", options: {...}}.
func handlerEntry(item any) (string, any, bool) {
	var inline any

	if m, ok := mapping(item); ok {
		item = m["loader"]
		inline = m["options"]
	}

	s, ok := item.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", nil, false
	}

	return s, inline, true
}
