package model

import "time"

// SearchEvent represents a single search served by a preset
type SearchEvent struct {
	Preset       string        `json:"preset"`
	Query        string        `json:"query"`
	Parsed       string        `json:"parsed"`
	Similarity   string        `json:"similarity"`
	SearchType   string        `json:"search_type"` // "free_text", "structured", "combined", "match_all"
	ResponseTime time.Duration `json:"response_time"`
	ResultCount  int           `json:"result_count"`
	Timestamp    time.Time     `json:"timestamp"`
}

// Search types recorded on a SearchEvent.
const (
	SearchTypeFreeText   = "free_text"
	SearchTypeStructured = "structured"
	SearchTypeCombined   = "combined"
	SearchTypeMatchAll   = "match_all"
)

// PopularSearch represents aggregated data for a repeated query
type PopularSearch struct {
	Query       string `json:"query"`
	SearchCount int    `json:"search_count"`
}

// PresetUsage represents search statistics for a specific preset
type PresetUsage struct {
	Preset          string  `json:"preset"`
	DocumentCount   int     `json:"document_count"`
	SearchCount     int     `json:"search_count"`
	ZeroResultCount int     `json:"zero_result_count"`
	AvgResultCount  float64 `json:"avg_result_count"`
}

// ResponseTimeDistribution represents response time distribution buckets
type ResponseTimeDistribution struct {
	Bucket0To1ms      int     `json:"bucket_0_1ms"`
	Bucket1To10ms     int     `json:"bucket_1_10ms"`
	Bucket10To100ms   int     `json:"bucket_10_100ms"`
	Bucket100msPlus   int     `json:"bucket_100ms_plus"`
	Percentage0To1    float64 `json:"percentage_0_1"`
	Percentage1To10   float64 `json:"percentage_1_10"`
	Percentage10To100 float64 `json:"percentage_10_100"`
	Percentage100Plus float64 `json:"percentage_100_plus"`
}

// SearchTypeStats counts searches by the parts of the request that were set
type SearchTypeStats struct {
	FreeText   int `json:"free_text"`
	Structured int `json:"structured"`
	Combined   int `json:"combined"`
	MatchAll   int `json:"match_all"`
}

// AnalyticsDashboard represents the aggregated view over recorded searches
type AnalyticsDashboard struct {
	TotalSearches     int     `json:"total_searches"`
	AvgResponseTimeUs int64   `json:"avg_response_time_us"`
	ZeroResultRate    float64 `json:"zero_result_rate"`
	ActivePresets     int     `json:"active_presets"`

	PopularSearches          []PopularSearch          `json:"popular_searches"`
	PresetUsage              []PresetUsage            `json:"preset_usage"`
	SimilarityUsage          map[string]int           `json:"similarity_usage"`
	ResponseTimeDistribution ResponseTimeDistribution `json:"response_time_distribution"`
	SearchTypes              SearchTypeStats          `json:"search_types"`
}
