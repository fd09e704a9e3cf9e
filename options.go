package build

import (
	"github.com/0xalexb/hjarta-build/config"
	"github.com/0xalexb/hjarta-build/engine/esbuild"

	"go.uber.org/fx"
)

// Options holds configuration settings for the application.
type Options struct {
	Modules   []fx.Option
	LogLevel  string
	LogFormat string
}

// Option defines a function type for applying configuration options.
type Option func(*Options)

// WithModules adds Fx modules to the application.
func WithModules(modules ...fx.Option) Option {
	return func(opts *Options) {
		opts.Modules = append(opts.Modules, modules...)
	}
}

// WithConfig adds the module that reads the build configuration file at path and
// provides the resolved *plan.BuildPlan. Section selects a colon-separated path
// inside the document; overlays are applied to the raw document before resolution.
func WithConfig(path, section string, overlays ...config.Overlay) Option {
	return func(opts *Options) {
		opts.Modules = append(opts.Modules, NewConfigModule(path, section, overlays...))
	}
}

// WithBuild adds the engine module that runs one build and then shuts the app down.
func WithBuild() Option {
	return func(opts *Options) {
		opts.Modules = append(opts.Modules, esbuild.NewModule(esbuild.ActionBuild))
	}
}

// WithServe adds the engine module that keeps a dev-server session running.
func WithServe() Option {
	return func(opts *Options) {
		opts.Modules = append(opts.Modules, esbuild.NewModule(esbuild.ActionServe))
	}
}

// WithLogLevel sets the log level for the application.
// Valid levels are: "debug", "info", "warn", "error".
// If not set or invalid, defaults to "info".
func WithLogLevel(level string) Option {
	return func(opts *Options) {
		opts.LogLevel = level
	}
}

// WithLogFormat sets the log output format, "json" or "text".
// If not set or invalid, defaults to "json".
func WithLogFormat(format string) Option {
	return func(opts *Options) {
		opts.LogFormat = format
	}
}
