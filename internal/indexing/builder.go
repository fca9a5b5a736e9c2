// Package indexing builds immutable inverted indexes from a document collection.
package indexing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gcbaptista/searchlab/config"
	"github.com/gcbaptista/searchlab/index"
	"github.com/gcbaptista/searchlab/internal/analysis"
	internalErrors "github.com/gcbaptista/searchlab/internal/errors"
	"github.com/gcbaptista/searchlab/internal/logger"
	"github.com/gcbaptista/searchlab/internal/metrics"
	"github.com/gcbaptista/searchlab/model"
	"github.com/gcbaptista/searchlab/store"
)

// DefaultFields are the text fields analyzed when WithFields is not given.
var DefaultFields = []string{model.FieldTitle, model.FieldAbstract, model.FieldDescription}

// Selector decides whether a document takes part in the index.
type Selector func(doc model.Document) bool

// SelectAll accepts every document.
func SelectAll(model.Document) bool { return true }

// SelectSearchTask accepts documents collected for the given task number.
// Task 0 accepts every document.
func SelectSearchTask(task int) Selector {
	if task == 0 {
		return SelectAll
	}
	return func(doc model.Document) bool {
		t, ok := doc.SearchTask()
		return ok && t == task
	}
}

// SelectorPolicy says what happens to a document the selector rejects.
type SelectorPolicy int

const (
	// SkipUnselected leaves rejected documents out of the index.
	SkipUnselected SelectorPolicy = iota
	// FailOnUnselected aborts the build at the first rejected document.
	FailOnUnselected
)

// ProgressFunc is called after each indexed document.
type ProgressFunc func(processed, total int)

type options struct {
	ctx      context.Context
	selector Selector
	policy   SelectorPolicy
	fields   []string
	logger   *slog.Logger
	metrics  *metrics.Metrics
	progress ProgressFunc
}

// Option configures Build.
type Option func(*options)

// WithSelector sets the inclusion predicate. The default accepts every document.
func WithSelector(selector Selector) Option {
	return func(o *options) {
		if selector != nil {
			o.selector = selector
		}
	}
}

// WithSelectorPolicy sets how rejected documents are handled.
func WithSelectorPolicy(policy SelectorPolicy) Option {
	return func(o *options) { o.policy = policy }
}

// WithFields sets the text fields to analyze. Other fields are still stored.
func WithFields(fields ...string) Option {
	return func(o *options) { o.fields = fields }
}

// WithLogger sets the build logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records the build outcome on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithContext aborts the build once ctx is done. Nothing is returned for an aborted build.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) { o.progress = fn }
}

// fieldBuilder accumulates the postings of one field during a build.
type fieldBuilder struct {
	postings map[string]index.PostingList
	lengths  []int
}

// Build analyzes the selected documents with cfg and returns the finished index.
// The index is returned only when every document was processed; on error the
// partially built structures are dropped and nil is returned.
func Build(docs []model.Document, cfg config.AnalyzerConfig, opts ...Option) (*index.Index, error) {
	o := options{
		ctx:      context.Background(),
		selector: SelectAll,
		policy:   SkipUnselected,
		fields:   DefaultFields,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.WithComponent("indexer")
	}

	analyzer, err := analysis.New(cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	idx, skipped, err := build(docs, analyzer, o)
	o.metrics.ObserveBuild(cfg.String(), len(docs)-skipped, err)
	if err != nil {
		o.logger.Error("index build failed", "analyzer", cfg.String(), "error", err)
		return nil, err
	}

	o.logger.Info("index built",
		"analyzer", cfg.String(),
		"documents", idx.DocumentCount(),
		"skipped", skipped,
		"fields", o.fields,
		"duration", time.Since(start),
	)
	return idx, nil
}

func build(docs []model.Document, analyzer *analysis.Analyzer, o options) (*index.Index, int, error) {
	if len(o.fields) == 0 {
		return nil, 0, internalErrors.NewIndexBuildError("", "no fields to index", nil)
	}

	selected := make([]model.Document, 0, len(docs))
	for _, doc := range docs {
		if o.selector(doc) {
			selected = append(selected, doc)
			continue
		}
		if o.policy == FailOnUnselected {
			return nil, 0, internalErrors.NewIndexBuildError(doc.ID, "document rejected by selector", nil)
		}
	}
	skipped := len(docs) - len(selected)

	docStore := store.NewDocumentStore(len(selected))
	fields := make(map[string]*fieldBuilder, len(o.fields))
	names := make([]string, 0, len(o.fields))
	for _, field := range o.fields {
		if _, dup := fields[field]; dup {
			continue
		}
		names = append(names, field)
		fields[field] = &fieldBuilder{
			postings: make(map[string]index.PostingList),
			lengths:  make([]int, len(selected)),
		}
	}

	for i, doc := range selected {
		if err := o.ctx.Err(); err != nil {
			return nil, skipped, fmt.Errorf("build interrupted after %d of %d documents: %w", i, len(selected), err)
		}
		if strings.TrimSpace(doc.ID) == "" {
			return nil, skipped, internalErrors.NewIndexBuildError("", fmt.Sprintf("document without ID at position %d", i), nil)
		}
		docID, err := docStore.Add(doc)
		if err != nil {
			return nil, skipped, internalErrors.NewIndexBuildError(doc.ID, "storing document", err)
		}

		for _, field := range names {
			text, ok := doc.TextField(field)
			if !ok {
				continue
			}
			fb := fields[field]
			terms := analyzer.Analyze(text)
			fb.lengths[docID] = len(terms)

			freqs := make(map[string]int, len(terms))
			for _, term := range terms {
				freqs[term]++
			}
			// Documents are visited in DocID order, so appending keeps lists sorted.
			for term, freq := range freqs {
				fb.postings[term] = append(fb.postings[term], index.Posting{DocID: docID, Freq: freq})
			}
		}

		if o.progress != nil {
			o.progress(i+1, len(selected))
		}
	}

	data := make(map[string]index.FieldData, len(fields))
	for name, fb := range fields {
		data[name] = index.FieldData{Postings: fb.postings, Lengths: fb.lengths}
	}
	idx, err := index.New(analyzer.Config(), docStore, data)
	if err != nil {
		return nil, skipped, internalErrors.NewIndexBuildError("", "materializing index", err)
	}
	return idx, skipped, nil
}
