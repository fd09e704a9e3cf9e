// Command hjarta-build resolves a webpack-style build configuration and hands it to esbuild.
//
// Usage:
//
//	hjarta-build [-config build.yaml] [-section path] [-mode m] [-serve] [-print]
//
// Defaults for -log-level, -log-format and -mode are read from LOG_LEVEL, LOG_FORMAT and
// BUILD_MODE in the process environment, then from a .env file next to the configuration.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	build "github.com/0xalexb/hjarta-build"
	"github.com/0xalexb/hjarta-build/config"
	filefetcher "github.com/0xalexb/hjarta-build/config/fetcher/file"
	yamlparser "github.com/0xalexb/hjarta-build/config/parser/yaml"
	"github.com/0xalexb/hjarta-build/plan"

	"github.com/goccy/go-yaml"
	"go.uber.org/fx"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

type options struct {
	configPath string
	section    string
	mode       string
	serve      bool
	print      bool
	logLevel   string
	logFormat  string
	version    bool
}

func main() {
	opts, code, done := parseFlags(os.Args[1:], os.Stdout, os.Stderr)
	if done {
		os.Exit(code)
	}

	// Resolved before the app starts, not through build.WithConfig, so -print works
	// without the engine and each configuration error is listed on its own line.
	built, code := resolvePlan(&opts, os.Stdout, os.Stderr)
	if built == nil || opts.print {
		os.Exit(code)
	}

	appOpts := []build.Option{
		build.WithLogLevel(opts.logLevel),
		build.WithLogFormat(opts.logFormat),
		build.WithModules(fx.Supply(built)),
	}

	if opts.serve {
		appOpts = append(appOpts, build.WithServe())
	} else {
		appOpts = append(appOpts, build.WithBuild())
	}

	build.NewApp(appOpts...).Run()
}

// parseFlags reads the command line. done is true when the command should exit with code.
func parseFlags(args []string, stdout, stderr io.Writer) (options, int, bool) {
	var opts options

	flags := flag.NewFlagSet("hjarta-build", flag.ContinueOnError)
	flags.SetOutput(stderr)

	flags.StringVar(&opts.configPath, "config", "build.yaml", "path to the YAML or JSON build configuration")
	flags.StringVar(&opts.section, "section", "", "colon-separated path to the build section inside the document")
	flags.StringVar(&opts.mode, "mode", "", "override the mode: development, production or none")
	flags.BoolVar(&opts.serve, "serve", false, "start a dev-server session instead of a single build")
	flags.BoolVar(&opts.print, "print", false, "print the resolved plan as YAML and exit")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: json or text")
	flags.BoolVar(&opts.version, "version", false, "print the version and exit")

	err := flags.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, exitOK, true
		}

		return opts, exitUsage, true
	}

	if flags.NArg() > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", flags.Args())

		return opts, exitUsage, true
	}

	if opts.version {
		_, _ = fmt.Fprintf(stdout, "hjarta-build %s (compiled %s)\n", build.Version, build.CompiledAt)

		return opts, exitOK, true
	}

	return opts, exitOK, false
}

// resolvePlan reads the configuration, fills unset options from the environment and
// resolves the plan. With -print the plan is written to stdout. A nil plan means the
// command must exit with the returned code.
func resolvePlan(opts *options, stdout, stderr io.Writer) (*plan.BuildPlan, int) {
	fetcher, err := filefetcher.NewFetcher(opts.configPath)()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "hjarta-build: %v\n", err)

		return nil, exitFailed
	}

	env, err := fetcher.Env()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "hjarta-build: %v\n", err)

		return nil, exitFailed
	}

	opts.logLevel = withDefault(opts.logLevel, "LOG_LEVEL", env)
	opts.logFormat = withDefault(opts.logFormat, "LOG_FORMAT", env)
	opts.mode = withDefault(opts.mode, "BUILD_MODE", env)

	provider := config.Provider[*plan.BuildPlan](plan.Resolve, opts.section, config.Set("mode", opts.mode))

	built, err := provider(yamlparser.NewParser(), fetcher)
	if err != nil {
		reportError(stderr, fetcher.Path(), err)

		return nil, exitFailed
	}

	if opts.print {
		out, err := yaml.Marshal(built)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "hjarta-build: encoding plan: %v\n", err)

			return nil, exitFailed
		}

		_, _ = stdout.Write(out)
	}

	return built, exitOK
}

func reportError(w io.Writer, path string, err error) {
	configErrors := plan.Errors(err)
	if len(configErrors) == 0 {
		_, _ = fmt.Fprintf(w, "hjarta-build: %v\n", err)

		return
	}

	_, _ = fmt.Fprintf(w, "hjarta-build: %s has %d configuration error(s):\n", path, len(configErrors))

	for _, e := range configErrors {
		_, _ = fmt.Fprintf(w, "  %v\n", e)
	}
}

// withDefault returns value, or the first non-empty of the process environment and the .env file.
func withDefault(value, key string, env map[string]string) string {
	if value != "" {
		return value
	}

	if v := os.Getenv(key); v != "" {
		return v
	}

	return env[key]
}
