// Package search evaluates query trees against an index, scores and orders the
// matches, and projects them onto stored values.
package search

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gcbaptista/searchlab/config"
	"github.com/gcbaptista/searchlab/index"
	"github.com/gcbaptista/searchlab/internal/analysis"
	internalErrors "github.com/gcbaptista/searchlab/internal/errors"
	"github.com/gcbaptista/searchlab/internal/logger"
	"github.com/gcbaptista/searchlab/internal/metrics"
	"github.com/gcbaptista/searchlab/internal/query"
	"github.com/gcbaptista/searchlab/services"
)

// Service implements the search logic for a single index.
// It fulfills the services.Searcher and services.MultiSearcher interfaces.
// A Service is read-only after NewService and safe for concurrent use.
type Service struct {
	invertedIndex *index.Index
	analyzer      *analysis.Analyzer
	builder       *query.Builder

	name              string
	similarity        config.Similarity
	settings          config.SearchConfig
	retrievableFields []string

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithName sets the preset name used in logs and metrics.
func WithName(name string) Option {
	return func(s *Service) { s.name = name }
}

// WithSimilarity sets the default similarity. Requests may override it.
func WithSimilarity(sim config.Similarity) Option {
	return func(s *Service) { s.similarity = sim }
}

// WithSettings sets the default field, date handling, presentation and limit.
func WithSettings(settings config.SearchConfig) Option {
	return func(s *Service) { s.settings = settings }
}

// WithRetrievableFields sets the stored fields returned when a request names none.
func WithRetrievableFields(fields ...string) Option {
	return func(s *Service) { s.retrievableFields = fields }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics records every search on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a search Service over idx. analyzer must be configured
// exactly like the analyzer the index was built with.
func NewService(idx *index.Index, analyzer *analysis.Analyzer, opts ...Option) (*Service, error) {
	if idx == nil {
		return nil, fmt.Errorf("inverted index cannot be nil")
	}
	if analyzer == nil {
		return nil, fmt.Errorf("analyzer cannot be nil")
	}
	if analyzer.Config() != idx.AnalyzerConfig() {
		return nil, fmt.Errorf("analyzer %s does not match index analyzer %s", analyzer.Config(), idx.AnalyzerConfig())
	}

	s := &Service{
		invertedIndex: idx,
		analyzer:      analyzer,
		builder:       query.NewBuilder(analyzer),
		similarity:    config.SimilarityVectorSpace,
		settings:      config.DefaultExperiment().Search,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.name == "" {
		s.name = analyzer.Config().String()
	}
	if s.logger == nil {
		s.logger = logger.WithComponent("search")
	}
	s.logger = s.logger.With("preset", s.name)

	if err := s.similarity.Validate(); err != nil {
		return nil, err
	}
	if err := s.settings.DayBoundary.Validate(); err != nil {
		return nil, err
	}
	if err := s.settings.SortMode.Validate(); err != nil {
		return nil, err
	}
	if s.settings.BM25 == (config.BM25Params{}) {
		s.settings.BM25 = config.DefaultBM25Params()
	}
	return s, nil
}

// Index returns the index the service reads.
func (s *Service) Index() *index.Index {
	return s.invertedIndex
}

// Name returns the preset name of the service.
func (s *Service) Name() string {
	return s.name
}

// Similarity returns the default similarity of the service.
func (s *Service) Similarity() config.Similarity {
	return s.similarity
}

// Search performs a search operation based on the request.
func (s *Service) Search(req services.SearchRequest) (services.SearchResult, error) {
	startTime := time.Now()

	result, err := s.search(req)
	took := time.Since(startTime)
	s.metrics.ObserveSearch(s.name, took, result.Total, err)
	if err != nil {
		s.logger.Warn("search failed", "query", req.QueryString, "error", err)
		return services.SearchResult{}, err
	}

	result.Took = took.Milliseconds()
	result.TookUs = took.Microseconds()
	s.logger.Debug("search completed",
		"query_id", result.QueryId,
		"parsed", result.Echo.Parsed,
		"total", result.Total,
		"took", took,
	)
	return result, nil
}

func (s *Service) search(req services.SearchRequest) (services.SearchResult, error) {
	sim := s.similarity
	if req.Similarity != "" {
		parsed, err := config.ParseSimilarity(string(req.Similarity))
		if err != nil {
			return services.SearchResult{}, err
		}
		sim = parsed
	}
	presentation := Presentation{Mode: s.settings.SortMode, Field: s.settings.SortField}
	if req.SortMode != "" {
		presentation.Mode = req.SortMode
	}
	if req.SortField != "" {
		presentation.Field = req.SortField
	}
	if err := presentation.Mode.Validate(); err != nil {
		return services.SearchResult{}, err
	}
	if req.Limit < 0 {
		return services.SearchResult{}, internalErrors.NewValidationError("limit", "must not be negative")
	}

	root, err := s.buildQuery(req)
	if err != nil {
		return services.SearchResult{}, err
	}

	matches, err := Evaluate(s.invertedIndex, root, sim, WithBM25Params(s.settings.BM25))
	if err != nil {
		return services.SearchResult{}, err
	}
	ordered, err := Order(s.invertedIndex, matches, presentation)
	if err != nil {
		return services.SearchResult{}, err
	}

	total := len(ordered)
	limit := s.settings.Limit
	if req.Limit > 0 {
		limit = req.Limit
	}
	if limit > 0 && len(ordered) > limit {
		ordered = ordered[:limit]
	}

	fields := req.RetrievableFields
	if len(fields) == 0 {
		fields = s.retrievableFields
	}

	return services.SearchResult{
		Hits:    Collect(s.invertedIndex, ordered, fields),
		Total:   total,
		QueryId: uuid.New().String(),
		Echo: services.QueryEcho{
			QueryString: req.QueryString,
			Fields:      req.Fields,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			Similarity:  sim,
			Parsed:      root.String(),
		},
	}, nil
}

// buildQuery conjoins the free-text expression, the per-field lists and the date range.
func (s *Service) buildQuery(req services.SearchRequest) (query.Node, error) {
	var parsed query.Node
	if strings.TrimSpace(req.QueryString) != "" {
		node, err := query.Parse(req.QueryString, s.settings.DefaultField, s.analyzer)
		if err != nil {
			return nil, err
		}
		parsed = node
	}

	structured := s.builder.Build(query.StructuredQuery{
		Clauses: query.ClausesFromFields(req.Fields),
		Range:   query.DateRange(s.settings.DateField, req.StartDate, req.EndDate, s.settings.DayBoundary),
	})
	if len(structured.Children) == 0 {
		if parsed != nil {
			return parsed, nil
		}
		return structured, nil
	}
	return query.And(parsed, structured), nil
}
