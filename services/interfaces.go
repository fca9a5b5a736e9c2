package services

import (
	"context"

	"github.com/gcbaptista/searchlab/config"
	"github.com/gcbaptista/searchlab/index"
	"github.com/gcbaptista/searchlab/model"
)

// SearchRequest is one search against a built preset.
// QueryString and Fields may be combined; every part must then be satisfied.
type SearchRequest struct {
	QueryString       string                       `json:"query,omitempty"`              // Free-text boolean expression over the default field
	Fields            map[string]config.FieldTerms `json:"fields,omitempty"`             // Per-field include/exclude lists
	StartDate         string                       `json:"start_date,omitempty"`         // YYYY-MM-DD, inclusive
	EndDate           string                       `json:"end_date,omitempty"`           // YYYY-MM-DD, inclusive
	Similarity        config.Similarity            `json:"similarity,omitempty"`         // Optional: override the preset similarity
	SortMode          config.SortMode              `json:"sort_mode,omitempty"`          // Optional: ranked (default) or alphabetical
	SortField         string                       `json:"sort_field,omitempty"`         // Stored field compared in alphabetical mode
	Limit             int                          `json:"limit,omitempty"`              // Optional: maximum hits returned, 0 for all
	RetrievableFields []string                     `json:"retrievable_fields,omitempty"` // Optional: subset of stored fields to return
}

// QueryEcho reports a query as it was received, for logging by the caller.
type QueryEcho struct {
	QueryString string                       `json:"query,omitempty"`
	Fields      map[string]config.FieldTerms `json:"fields,omitempty"`
	StartDate   string                       `json:"start_date,omitempty"`
	EndDate     string                       `json:"end_date,omitempty"`
	Similarity  config.Similarity            `json:"similarity"`
	Parsed      string                       `json:"parsed"` // Query tree actually evaluated
}

// SearchResult is the presented outcome of a search.
type SearchResult struct {
	Hits    []model.ResultRecord `json:"hits"`
	Total   int                  `json:"total"`    // matching documents before the limit
	Took    int64                `json:"took"`     // milliseconds
	TookUs  int64                `json:"took_us"`  // microseconds
	QueryId string               `json:"query_id"` // unique UUID for this search query
	Echo    QueryEcho            `json:"query_echo"`
}

// MultiSearchRequest represents a request to execute multiple named searches
type MultiSearchRequest struct {
	Queries []NamedSearchRequest `json:"queries"`
}

// NamedSearchRequest represents a single named search within a multi-search request
type NamedSearchRequest struct {
	Name string `json:"name"`
	SearchRequest
}

// MultiSearchResult represents the response from a multi-search operation
type MultiSearchResult struct {
	Results          map[string]SearchResult `json:"results"`
	TotalQueries     int                     `json:"total_queries"`
	ProcessingTimeMs float64                 `json:"processing_time_ms"`
}

// PresetInfo describes a built preset.
type PresetInfo struct {
	Name       string                `json:"name"`
	Analyzer   config.AnalyzerConfig `json:"analyzer"`
	Similarity config.Similarity     `json:"similarity"`
	Documents  int                   `json:"documents"`
}

// Searcher defines operations for querying an index
type Searcher interface {
	Search(req SearchRequest) (SearchResult, error)
}

// MultiSearcher defines operations for performing multiple queries in a single request
type MultiSearcher interface {
	MultiSearch(ctx context.Context, req MultiSearchRequest) (*MultiSearchResult, error)
}

// PresetAccessor gives access to the index of one preset.
type PresetAccessor interface {
	Searcher
	MultiSearcher
	Info() PresetInfo
	Stats() index.Stats
}

// PresetManager holds the indexes built for named presets.
type PresetManager interface {
	GetPreset(name string) (PresetAccessor, error)
	ListPresets() []PresetInfo
}

// PresetBuilder builds and drops preset indexes at runtime.
type PresetBuilder interface {
	BuildPresetAsync(name string) (jobID string, err error)
	DropPreset(name string) error
}

// JobTracker exposes background jobs.
type JobTracker interface {
	GetJob(jobID string) (*model.Job, error)
	ListJobs(preset string, status *model.JobStatus) []*model.Job
	CancelJob(jobID string) error
}
