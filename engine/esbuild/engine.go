package esbuild

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/0xalexb/hjarta-build/plan"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/evanw/esbuild/pkg/api"
)

// ErrBuildFailed is returned when esbuild reports errors.
var ErrBuildFailed = errors.New("build failed")

// ErrNoDevServer is returned by Serve when the plan has no dev server section.
var ErrNoDevServer = errors.New("plan has no devServer section")

// ErrAlreadyServing is returned by Serve when a session is already running.
var ErrAlreadyServing = errors.New("dev server already running")

const liveReloadBanner = `new EventSource("/esbuild").addEventListener("change", () => location.reload());`

// Report describes the outcome of one build.
type Report struct {
	Stats      Stats
	Warnings   []string
	Violations []Violation
}

// Session describes a running dev server.
type Session struct {
	Host       string
	Port       uint16
	Servedir   string
	Watching   bool
	WatchFiles []string
}

// Engine hands a BuildPlan to esbuild.
type Engine struct {
	plan   *plan.BuildPlan
	logger *slog.Logger

	mu      sync.Mutex
	session api.BuildContext
}

// New creates an Engine for the given plan.
func New(p *plan.BuildPlan, logger *slog.Logger) *Engine {
	return &Engine{
		plan:   p,
		logger: logger,
	}
}

// Build runs a single build and enforces the performance budget.
// Cancelling ctx aborts the build.
func (e *Engine) Build(ctx context.Context) (*Report, error) {
	opts, err := Options(e.plan)
	if err != nil {
		return nil, err
	}

	buildCtx, ctxErr := api.Context(opts)
	if ctxErr != nil {
		return nil, fmt.Errorf("%w: %s", ErrBuildFailed, joinMessages(ctxErr.Errors))
	}
	defer buildCtx.Dispose()

	stop := context.AfterFunc(ctx, buildCtx.Cancel)
	defer stop()

	e.logger.Info("build started", slog.Any("plan", e.plan))

	result := buildCtx.Rebuild()

	if ctx.Err() != nil {
		return nil, fmt.Errorf("build cancelled: %w", ctx.Err())
	}

	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrBuildFailed, joinMessages(result.Errors))
	}

	stats, err := statsFromMetafile(result.Metafile)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Stats:      stats,
		Warnings:   messageTexts(result.Warnings),
		Violations: checkBudget(e.plan.Performance(), stats),
	}

	for _, w := range report.Warnings {
		e.logger.Warn("esbuild warning", slog.String("message", w))
	}

	for _, a := range stats.Assets {
		e.logger.Debug("asset emitted", slog.String("path", a.Path), slog.Uint64("bytes", a.Bytes))
	}

	err = e.enforceBudget(report.Violations)
	if err != nil {
		return report, err
	}

	e.logger.Info("build finished",
		slog.String("output", e.plan.OutputDirectory()),
		slog.Int("assets", len(stats.Assets)),
	)

	return report, nil
}

func (e *Engine) enforceBudget(violations []Violation) error {
	if len(violations) == 0 {
		return nil
	}

	switch e.plan.Performance().Hints {
	case plan.HintsError:
		msgs := make([]string, len(violations))
		for i, v := range violations {
			msgs[i] = v.String()
		}

		return fmt.Errorf("%w: %s", ErrBudgetExceeded, strings.Join(msgs, "; "))
	case plan.HintsWarning:
		for _, v := range violations {
			e.logger.Warn("performance budget exceeded",
				slog.String("kind", v.Kind),
				slog.String("name", v.Name),
				slog.Uint64("bytes", v.Bytes),
				slog.Uint64("limit", v.Limit),
			)
		}
	case plan.HintsOff:
	}

	return nil
}

// Serve starts a dev-server session: esbuild serves the static directory on the
// configured port and, when hot or live reload is enabled, rebuilds on change.
func (e *Engine) Serve(_ context.Context) (Session, error) {
	devServer, ok := e.plan.DevServer()
	if !ok {
		return Session{}, ErrNoDevServer
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		return Session{}, ErrAlreadyServing
	}

	opts, err := Options(e.plan)
	if err != nil {
		return Session{}, err
	}

	watching := devServer.Hot || devServer.LiveReload
	if watching {
		opts.Banner = map[string]string{"js": liveReloadBanner}
	}

	buildCtx, ctxErr := api.Context(opts)
	if ctxErr != nil {
		return Session{}, fmt.Errorf("%w: %s", ErrBuildFailed, joinMessages(ctxErr.Errors))
	}

	if watching {
		err = buildCtx.Watch(api.WatchOptions{})
		if err != nil {
			buildCtx.Dispose()

			return Session{}, fmt.Errorf("starting watch: %w", err)
		}
	}

	servedir, contained := serveDirectory(devServer.StaticDir, e.plan.OutputDirectory())
	if !contained {
		e.logger.Warn("static directory does not contain the output directory, serving the output directory instead",
			slog.String("static", devServer.StaticDir),
			slog.String("output", e.plan.OutputDirectory()),
		)
	}

	served, err := buildCtx.Serve(api.ServeOptions{
		Port:     devServer.Port,
		Servedir: servedir,
	})
	if err != nil {
		buildCtx.Dispose()

		return Session{}, fmt.Errorf("starting dev server: %w", err)
	}

	e.session = buildCtx

	watched := e.watchedFiles(devServer.WatchFiles)

	e.logger.Info("dev server started",
		slog.String("host", served.Host),
		slog.Int("port", int(served.Port)),
		slog.String("static", servedir),
		slog.Bool("watch", watching),
	)

	return Session{
		Host:       served.Host,
		Port:       served.Port,
		Servedir:   servedir,
		Watching:   watching,
		WatchFiles: watched,
	}, nil
}

// Stop ends the dev-server session, if any.
func (e *Engine) Stop(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return nil
	}

	e.session.Dispose()
	e.session = nil

	e.logger.Info("dev server stopped")

	return nil
}

// serveDirectory returns the directory esbuild should serve. Esbuild only serves
// builds whose output directory lies inside the served directory, so a static
// directory elsewhere is replaced by the output directory.
func serveDirectory(static, output string) (string, bool) {
	rel, err := filepath.Rel(static, output)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return output, false
	}

	return static, true
}

// watchedFiles expands the dev server's watch globs against the base directory.
// Patterns that match nothing are logged, since they usually point at a typo.
func (e *Engine) watchedFiles(patterns []string) []string {
	fsys := os.DirFS(e.plan.BaseDirectory())

	var files []string

	for _, pattern := range patterns {
		matches, err := expandGlob(fsys, pattern)
		if err != nil {
			e.logger.Warn("watch pattern failed", slog.String("pattern", pattern), slog.Any("error", err))

			continue
		}

		if len(matches) == 0 {
			e.logger.Warn("watch pattern matches no files", slog.String("pattern", pattern))

			continue
		}

		e.logger.Debug("watching files", slog.String("pattern", pattern), slog.Int("count", len(matches)))

		files = append(files, matches...)
	}

	return files
}

func expandGlob(fsys fs.FS, pattern string) ([]string, error) {
	pattern = strings.TrimPrefix(pattern, "./")

	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("expanding %q: %w", pattern, err)
	}

	return matches, nil
}

func joinMessages(msgs []api.Message) string {
	return strings.Join(messageTexts(msgs), "; ")
}

func messageTexts(msgs []api.Message) []string {
	texts := make([]string, 0, len(msgs))

	for _, m := range msgs {
		if m.Location != nil {
			texts = append(texts, fmt.Sprintf("%s:%d: %s", m.Location.File, m.Location.Line, m.Text))
		} else {
			texts = append(texts, m.Text)
		}
	}

	return texts
}
