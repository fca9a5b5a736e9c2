package engine

import (
	"context"
	"fmt"

	"github.com/gcbaptista/searchlab/config"
	"github.com/gcbaptista/searchlab/index"
	"github.com/gcbaptista/searchlab/internal/analysis"
	"github.com/gcbaptista/searchlab/internal/indexing"
	"github.com/gcbaptista/searchlab/internal/search"
	"github.com/gcbaptista/searchlab/model"
	"github.com/gcbaptista/searchlab/services"
)

// PresetInstance holds the index and search service built for one preset.
// It implements the services.PresetAccessor interface.
type PresetInstance struct {
	preset   config.Preset
	index    *index.Index
	searcher *search.Service
}

// newPresetInstance analyzes docs with the preset's analyzer and wires a search service over the result.
func newPresetInstance(ctx context.Context, preset config.Preset, docs []model.Document, opts Options, progress indexing.ProgressFunc) (*PresetInstance, error) {
	analyzer, err := analysis.New(preset.Analyzer)
	if err != nil {
		return nil, err
	}

	buildOpts := []indexing.Option{
		indexing.WithContext(ctx),
		indexing.WithSelectorPolicy(opts.SelectorPolicy),
		indexing.WithMetrics(opts.Metrics),
		indexing.WithLogger(opts.Logger.With("preset", preset.Name)),
	}
	if opts.Selector != nil {
		buildOpts = append(buildOpts, indexing.WithSelector(opts.Selector))
	}
	if len(opts.Fields) > 0 {
		buildOpts = append(buildOpts, indexing.WithFields(opts.Fields...))
	}
	if progress != nil {
		buildOpts = append(buildOpts, indexing.WithProgress(progress))
	}

	idx, err := indexing.Build(docs, preset.Analyzer, buildOpts...)
	if err != nil {
		return nil, fmt.Errorf("building preset '%s': %w", preset.Name, err)
	}

	searcher, err := search.NewService(idx, analyzer,
		search.WithName(preset.Name),
		search.WithSimilarity(preset.Similarity),
		search.WithSettings(opts.Search),
		search.WithRetrievableFields(opts.RetrievableFields...),
		search.WithMetrics(opts.Metrics),
		search.WithLogger(opts.Logger.With("component", "search")),
	)
	if err != nil {
		return nil, fmt.Errorf("creating search service for preset '%s': %w", preset.Name, err)
	}

	return &PresetInstance{preset: preset, index: idx, searcher: searcher}, nil
}

// Search delegates to the underlying search service.
func (i *PresetInstance) Search(req services.SearchRequest) (services.SearchResult, error) {
	return i.searcher.Search(req)
}

// MultiSearch delegates to the underlying search service.
func (i *PresetInstance) MultiSearch(ctx context.Context, req services.MultiSearchRequest) (*services.MultiSearchResult, error) {
	return i.searcher.MultiSearch(ctx, req)
}

// Info describes the preset and the size of its index.
func (i *PresetInstance) Info() services.PresetInfo {
	return services.PresetInfo{
		Name:       i.preset.Name,
		Analyzer:   i.preset.Analyzer,
		Similarity: i.preset.Similarity,
		Documents:  i.index.DocumentCount(),
	}
}

// Stats returns the per-field statistics of the index.
func (i *PresetInstance) Stats() index.Stats {
	return i.index.Stats()
}

// Preset returns the preset the instance was built for.
func (i *PresetInstance) Preset() config.Preset {
	return i.preset
}

// Index returns the built index.
func (i *PresetInstance) Index() *index.Index {
	return i.index
}
