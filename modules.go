package build

import (
	"github.com/0xalexb/hjarta-build/config"
	filefetcher "github.com/0xalexb/hjarta-build/config/fetcher/file"
	yamlparser "github.com/0xalexb/hjarta-build/config/parser/yaml"
	"github.com/0xalexb/hjarta-build/plan"

	"go.uber.org/fx"
)

// NewConfigModule creates an Fx module providing the *plan.BuildPlan resolved from the
// YAML or JSON document at path. The plan's base directory is the file's directory.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func NewConfigModule(path, section string, overlays ...config.Overlay) fx.Option {
	return fx.Module("config",
		fx.Provide(
			fx.Annotate(
				func() *yamlparser.Parser { return yamlparser.NewParser() },
				fx.As(new(config.Parser)),
			),
		),
		fx.Provide(
			fx.Annotate(
				filefetcher.NewFetcher(path),
				fx.As(new(config.DataFetcher)),
			),
		),
		fx.Provide(config.Provider[*plan.BuildPlan](plan.Resolve, section, overlays...)),
	)
}
