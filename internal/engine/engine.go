// Package engine builds one index per preset over a fixed document collection
// and serves searches against them.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/searchlab/config"
	internalErrors "github.com/gcbaptista/searchlab/internal/errors"
	"github.com/gcbaptista/searchlab/internal/indexing"
	"github.com/gcbaptista/searchlab/internal/jobs"
	"github.com/gcbaptista/searchlab/internal/logger"
	"github.com/gcbaptista/searchlab/internal/metrics"
	"github.com/gcbaptista/searchlab/model"
	"github.com/gcbaptista/searchlab/services"
)

const defaultBuildWorkers = 4

// Options configures how the engine builds and searches presets.
type Options struct {
	Selector       indexing.Selector
	SelectorPolicy indexing.SelectorPolicy
	Fields         []string
	Search         config.SearchConfig
	// RetrievableFields are the stored fields returned when a request names none.
	RetrievableFields []string
	// BuildWorkers bounds concurrent preset builds, both synchronous and background.
	BuildWorkers int

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// OptionsFromExperiment derives engine options from an experiment file.
func OptionsFromExperiment(cfg *config.Experiment) Options {
	opts := Options{
		Selector: indexing.SelectSearchTask(cfg.Collection.SearchTask),
		Fields:   cfg.Collection.Fields,
		Search:   cfg.Search,
	}
	if cfg.Collection.FailOnUnselected {
		opts.SelectorPolicy = indexing.FailOnUnselected
	}
	return opts
}

// Engine manages the indexes built for named presets.
// It implements the services.PresetManager and services.PresetBuilder interfaces.
type Engine struct {
	mu      sync.RWMutex
	presets map[string]*PresetInstance
	docs    []model.Document
	opts    Options

	// generation orders build requests; published holds the generation behind each live index.
	generation uint64
	published  map[string]uint64

	jobManager *jobs.Manager
}

// NewEngine creates an engine over docs. No preset is built yet.
func NewEngine(docs []model.Document, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = logger.WithComponent("engine")
	}
	if opts.BuildWorkers < 1 {
		opts.BuildWorkers = defaultBuildWorkers
	}
	if opts.Search == (config.SearchConfig{}) {
		opts.Search = config.DefaultExperiment().Search
	}

	jobManager := jobs.NewManager(opts.BuildWorkers,
		jobs.WithLogger(opts.Logger.With("component", "jobs")),
		jobs.WithMetrics(opts.Metrics),
	)
	jobManager.Start()

	return &Engine{
		presets:    make(map[string]*PresetInstance),
		published:  make(map[string]uint64),
		docs:       docs,
		opts:       opts,
		jobManager: jobManager,
	}
}

// Close stops background builds and waits for them to return.
func (e *Engine) Close() {
	e.jobManager.Stop()
}

// Documents returns the number of documents in the collection, before selection.
func (e *Engine) Documents() int {
	return len(e.docs)
}

// BuildPresets builds every preset concurrently. Either all of them are
// published or, on the first failure, none is.
func (e *Engine) BuildPresets(ctx context.Context, presets []config.Preset) error {
	if len(presets) == 0 {
		return internalErrors.NewValidationError("presets", "at least one preset is required")
	}

	start := time.Now()
	gen := e.nextGeneration()
	built := make([]*PresetInstance, len(presets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.BuildWorkers)
	for i, preset := range presets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			instance, err := newPresetInstance(ctx, preset, e.docs, e.opts, nil)
			if err != nil {
				return err
			}
			built[i] = instance
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	e.mu.Lock()
	for _, instance := range built {
		e.publishLocked(instance, gen)
	}
	e.mu.Unlock()

	e.opts.Logger.Info("presets built", "count", len(built), "duration", time.Since(start))
	return nil
}

// BuildPresetAsync looks up a preset by name and builds it in the background.
// An existing index for the preset keeps serving until the new one replaces it.
// When builds of one preset overlap, the most recently requested one stays live.
func (e *Engine) BuildPresetAsync(name string) (string, error) {
	preset, err := config.LookupPreset(name)
	if err != nil {
		return "", err
	}

	gen := e.nextGeneration()
	jobID := e.jobManager.CreateJob(model.JobTypeBuildPreset, preset.Name, map[string]string{
		"analyzer":   preset.Analyzer.String(),
		"similarity": string(preset.Similarity),
	})

	err = e.jobManager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		return e.executeBuildPresetJob(ctx, preset, job.ID, gen)
	})
	if err != nil {
		return "", fmt.Errorf("failed to start build job for preset '%s': %w", preset.Name, err)
	}
	return jobID, nil
}

func (e *Engine) executeBuildPresetJob(ctx context.Context, preset config.Preset, jobID string, gen uint64) error {
	total := len(e.docs)
	e.jobManager.UpdateJobProgress(jobID, 0, total, "indexing documents")

	instance, err := newPresetInstance(ctx, preset, e.docs, e.opts, func(processed, total int) {
		e.jobManager.UpdateJobProgress(jobID, processed, total, "indexing documents")
	})
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	published := e.publishLocked(instance, gen)
	e.mu.Unlock()

	if !published {
		e.opts.Logger.Info("stale build discarded", "preset", preset.Name, "job_id", jobID)
		e.jobManager.UpdateJobProgress(jobID, total, total, "superseded by a newer build")
		return nil
	}
	e.jobManager.UpdateJobProgress(jobID, total, total, "preset published")
	return nil
}

// nextGeneration numbers a build request. Later requests get higher numbers.
func (e *Engine) nextGeneration() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	return e.generation
}

// publishLocked installs instance unless a build requested after gen is
// already live. The caller holds e.mu.
func (e *Engine) publishLocked(instance *PresetInstance, gen uint64) bool {
	name := instance.preset.Name
	if e.published[name] > gen {
		return false
	}
	e.presets[name] = instance
	e.published[name] = gen
	return true
}

// DropPreset removes the index of a preset.
func (e *Engine) DropPreset(name string) error {
	key := presetKey(name)

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.presets[key]; !exists {
		return internalErrors.NewPresetNotFoundError(name)
	}
	delete(e.presets, key)
	e.opts.Logger.Info("preset dropped", "preset", key)
	return nil
}

// GetPreset returns the built preset with the given name.
func (e *Engine) GetPreset(name string) (services.PresetAccessor, error) {
	return e.Instance(name)
}

// Instance returns the concrete instance of a built preset.
func (e *Engine) Instance(name string) (*PresetInstance, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	instance, exists := e.presets[presetKey(name)]
	if !exists {
		return nil, internalErrors.NewPresetNotFoundError(name)
	}
	return instance, nil
}

// ListPresets describes every built preset, ordered by name.
func (e *Engine) ListPresets() []services.PresetInfo {
	e.mu.RLock()
	infos := make([]services.PresetInfo, 0, len(e.presets))
	for _, instance := range e.presets {
		infos = append(infos, instance.Info())
	}
	e.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// GetJob returns a background job by ID.
func (e *Engine) GetJob(jobID string) (*model.Job, error) {
	return e.jobManager.GetJob(jobID)
}

// ListJobs returns the background jobs of a preset, or of every preset when name is empty.
func (e *Engine) ListJobs(name string, status *model.JobStatus) []*model.Job {
	return e.jobManager.ListJobs(presetKey(name), status)
}

// WaitJob blocks until a background job finishes.
func (e *Engine) WaitJob(ctx context.Context, jobID string) (*model.Job, error) {
	return e.jobManager.Wait(ctx, jobID)
}

func presetKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CancelJob cancels a pending or running background job.
func (e *Engine) CancelJob(jobID string) error {
	return e.jobManager.CancelJob(jobID)
}
