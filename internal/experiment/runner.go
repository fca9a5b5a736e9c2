// Package experiment runs a set of queries against every selected preset and
// measures the ranked results against the stored relevance flags.
package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/searchlab/config"
	internalErrors "github.com/gcbaptista/searchlab/internal/errors"
	"github.com/gcbaptista/searchlab/internal/logger"
	"github.com/gcbaptista/searchlab/model"
	"github.com/gcbaptista/searchlab/services"
)

const defaultWorkers = 8

// QueryRun is the outcome of one query against one preset.
type QueryRun struct {
	Preset string               `json:"preset"`
	Query  string               `json:"query"`
	Total  int                  `json:"total"`
	Hits   []model.ResultRecord `json:"hits"`
	Echo   services.QueryEcho   `json:"query_echo"`
	Effectiveness
}

// PresetSummary averages the effectiveness of every query run against a preset.
type PresetSummary struct {
	Preset        string  `json:"preset"`
	Queries       int     `json:"queries"`
	MeanPrecision float64 `json:"mean_precision"`
	MeanRecall    float64 `json:"mean_recall"`
	MAP           float64 `json:"map"`
}

// Report holds every run, grouped by preset in the order requested, and the per-preset summaries.
type Report struct {
	Runs      []QueryRun      `json:"runs"`
	Summaries []PresetSummary `json:"summaries"`
	Took      time.Duration   `json:"took"`
}

// Runner evaluates queries over built presets.
type Runner struct {
	presets services.PresetManager
	workers int
	logger  *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers bounds the number of searches run at once.
func WithWorkers(n int) Option {
	return func(r *Runner) { r.workers = n }
}

// WithLogger sets the runner logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// NewRunner creates a runner over the presets held by manager.
func NewRunner(manager services.PresetManager, opts ...Option) *Runner {
	r := &Runner{presets: manager, workers: defaultWorkers}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers < 1 {
		r.workers = 1
	}
	if r.logger == nil {
		r.logger = logger.WithComponent("experiment")
	}
	return r
}

// RequestFor turns a configured query into a ranked search request.
func RequestFor(q config.QueryConfig) services.SearchRequest {
	return services.SearchRequest{
		QueryString: q.Text,
		Fields:      q.Fields,
		StartDate:   q.StartDate,
		EndDate:     q.EndDate,
		Similarity:  q.Similarity,
		SortMode:    config.SortRanked,
	}
}

// QueryNames returns the configured name of each query, or q1, q2, ... when unnamed.
func QueryNames(queries []config.QueryConfig) ([]string, error) {
	names := make([]string, len(queries))
	seen := make(map[string]struct{}, len(queries))
	for i, q := range queries {
		name := q.Name
		if name == "" {
			name = fmt.Sprintf("q%d", i+1)
		}
		if _, dup := seen[name]; dup {
			return nil, internalErrors.NewValidationError("queries", fmt.Sprintf("duplicate query name '%s'", name))
		}
		seen[name] = struct{}{}
		names[i] = name
	}
	return names, nil
}

// Run searches every query against every named preset. The first failing search aborts the run.
func (r *Runner) Run(ctx context.Context, presetNames []string, queries []config.QueryConfig) (*Report, error) {
	start := time.Now()
	if len(presetNames) == 0 {
		return nil, internalErrors.NewValidationError("presets", "at least one preset is required")
	}
	if len(queries) == 0 {
		return nil, internalErrors.NewValidationError("queries", "at least one query is required")
	}
	names, err := QueryNames(queries)
	if err != nil {
		return nil, err
	}

	accessors := make([]services.PresetAccessor, len(presetNames))
	for i, name := range presetNames {
		accessor, err := r.presets.GetPreset(name)
		if err != nil {
			return nil, err
		}
		accessors[i] = accessor
	}

	runs := make([]QueryRun, len(accessors)*len(queries))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for p, accessor := range accessors {
		info := accessor.Info()
		relevant := accessor.Stats().Relevant
		for q, query := range queries {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				result, err := accessor.Search(RequestFor(query))
				if err != nil {
					return fmt.Errorf("preset '%s' query '%s': %w", info.Name, names[q], err)
				}
				runs[p*len(queries)+q] = QueryRun{
					Preset:        info.Name,
					Query:         names[q],
					Total:         result.Total,
					Hits:          result.Hits,
					Echo:          result.Echo,
					Effectiveness: Evaluate(result.Hits, relevant),
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Runs: runs, Summaries: summarize(runs, len(queries)), Took: time.Since(start)}
	for _, s := range report.Summaries {
		r.logger.Info("preset evaluated",
			"preset", s.Preset,
			"queries", s.Queries,
			"map", s.MAP,
			"mean_precision", s.MeanPrecision,
			"mean_recall", s.MeanRecall,
		)
	}
	return report, nil
}

// summarize averages consecutive blocks of perPreset runs.
func summarize(runs []QueryRun, perPreset int) []PresetSummary {
	summaries := make([]PresetSummary, 0, len(runs)/perPreset)
	for start := 0; start < len(runs); start += perPreset {
		block := runs[start : start+perPreset]
		s := PresetSummary{Preset: block[0].Preset, Queries: len(block)}
		for _, run := range block {
			s.MeanPrecision += run.Precision
			s.MeanRecall += run.Recall
			s.MAP += run.AveragePrecision
		}
		n := float64(len(block))
		s.MeanPrecision /= n
		s.MeanRecall /= n
		s.MAP /= n
		summaries = append(summaries, s)
	}
	return summaries
}
