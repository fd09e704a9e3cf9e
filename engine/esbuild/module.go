package esbuild

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
)

// Action selects what the engine module does when the application starts.
type Action int

const (
	// ActionBuild runs one build and shuts the application down when it finishes.
	ActionBuild Action = iota
	// ActionServe keeps a dev-server session running until the application stops.
	ActionServe
)

func (a Action) String() string {
	if a == ActionServe {
		return "serve"
	}

	return "build"
}

// NewModule creates an Fx module that runs the engine against the injected *plan.BuildPlan.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func NewModule(action Action) fx.Option {
	return fx.Module("esbuild",
		fx.Provide(New),
		fx.Invoke(func(lifecycle fx.Lifecycle, shutdowner fx.Shutdowner, engine *Engine, logger *slog.Logger) {
			if action == ActionServe {
				lifecycle.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						_, err := engine.Serve(ctx)

						return err
					},
					OnStop: engine.Stop,
				})

				return
			}

			runner := &buildRunner{engine: engine, shutdowner: shutdowner, logger: logger}

			lifecycle.Append(fx.Hook{
				OnStart: runner.start,
				OnStop:  runner.stop,
			})
		}),
	)
}

// buildRunner runs a build in the background so a long build does not hit the Fx start timeout.
type buildRunner struct {
	engine     *Engine
	shutdowner fx.Shutdowner
	logger     *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func (r *buildRunner) start(context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())

	r.cancel = cancel
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)

		exitCode := 0

		_, err := r.engine.Build(ctx)
		if err != nil {
			r.logger.Error("build failed", slog.Any("error", err))

			exitCode = 1
		}

		shutdownErr := r.shutdowner.Shutdown(fx.ExitCode(exitCode))
		if shutdownErr != nil {
			r.logger.Error("failed to trigger shutdown", slog.Any("error", shutdownErr))
		}
	}()

	return nil
}

func (r *buildRunner) stop(ctx context.Context) error {
	if r.cancel == nil {
		return nil
	}

	r.cancel()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck
	}
}
