package esbuild

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/0xalexb/hjarta-build/plan"
)

// ErrBudgetExceeded is returned when emitted assets exceed the performance budget and hints are set to error.
var ErrBudgetExceeded = errors.New("performance budget exceeded")

type metafile struct {
	Outputs map[string]metafileOutput `json:"outputs"`
}

type metafileOutput struct {
	Bytes      uint64 `json:"bytes"`
	EntryPoint string `json:"entryPoint,omitempty"`
	CSSBundle  string `json:"cssBundle,omitempty"`
}

// Asset is one emitted output file.
type Asset struct {
	Path       string
	Bytes      uint64
	EntryPoint string
}

// Violation is one asset or entrypoint over its size limit.
type Violation struct {
	Name  string
	Bytes uint64
	Limit uint64
	Kind  string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %s is %d bytes, limit %d", v.Kind, v.Name, v.Bytes, v.Limit)
}

// Stats summarizes the files emitted by one build.
type Stats struct {
	Assets      []Asset
	Entrypoints map[string]uint64
}

// statsFromMetafile lists emitted files in path order, skipping source maps, and sums
// the size of each entry point together with the CSS bundle emitted for it.
func statsFromMetafile(raw string) (Stats, error) {
	stats := Stats{Entrypoints: map[string]uint64{}}

	if raw == "" {
		return stats, nil
	}

	var meta metafile

	err := json.Unmarshal([]byte(raw), &meta)
	if err != nil {
		return stats, fmt.Errorf("decoding metafile: %w", err)
	}

	for p, out := range meta.Outputs {
		if strings.HasSuffix(p, ".map") {
			continue
		}

		stats.Assets = append(stats.Assets, Asset{Path: p, Bytes: out.Bytes, EntryPoint: out.EntryPoint})

		if out.EntryPoint == "" {
			continue
		}

		stats.Entrypoints[out.EntryPoint] += out.Bytes

		if css, ok := meta.Outputs[out.CSSBundle]; ok && css.EntryPoint == "" {
			stats.Entrypoints[out.EntryPoint] += css.Bytes
		}
	}

	sort.Slice(stats.Assets, func(i, j int) bool { return stats.Assets[i].Path < stats.Assets[j].Path })

	return stats, nil
}

// checkBudget compares emitted files with the plan's budget.
func checkBudget(budget plan.PerformanceBudget, stats Stats) []Violation {
	var violations []Violation

	for _, a := range stats.Assets {
		if a.Bytes > budget.MaxAssetBytes {
			violations = append(violations, Violation{
				Name: a.Path, Bytes: a.Bytes, Limit: budget.MaxAssetBytes, Kind: "asset",
			})
		}
	}

	entries := make([]string, 0, len(stats.Entrypoints))
	for name := range stats.Entrypoints {
		entries = append(entries, name)
	}

	sort.Strings(entries)

	for _, name := range entries {
		if size := stats.Entrypoints[name]; size > budget.MaxEntrypointBytes {
			violations = append(violations, Violation{
				Name: name, Bytes: size, Limit: budget.MaxEntrypointBytes, Kind: "entrypoint",
			})
		}
	}

	return violations
}
