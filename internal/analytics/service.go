// Package analytics keeps a bounded in-memory log of served searches and
// aggregates it into a dashboard.
package analytics

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gcbaptista/searchlab/internal/logger"
	"github.com/gcbaptista/searchlab/model"
	"github.com/gcbaptista/searchlab/services"
)

const (
	defaultMaxEvents   = 10000
	popularSearchLimit = 5
)

// Service implements analytics tracking and reporting
type Service struct {
	mutex     sync.RWMutex
	events    []model.SearchEvent
	maxEvents int
	presets   services.PresetManager
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMaxEvents bounds the number of events kept. Older events are discarded first.
func WithMaxEvents(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxEvents = n
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new analytics service. presets may be nil, in which
// case the dashboard reports only presets that appear in recorded events.
func NewService(presets services.PresetManager, opts ...Option) *Service {
	s := &Service{
		events:    make([]model.SearchEvent, 0),
		maxEvents: defaultMaxEvents,
		presets:   presets,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.WithComponent("analytics")
	}
	return s
}

// TrackSearch records the outcome of a successful search on preset.
func (s *Service) TrackSearch(preset string, req services.SearchRequest, result services.SearchResult) {
	s.TrackSearchEvent(model.SearchEvent{
		Preset:       preset,
		Query:        strings.TrimSpace(req.QueryString),
		Parsed:       result.Echo.Parsed,
		Similarity:   string(result.Echo.Similarity),
		SearchType:   ClassifySearch(req),
		ResponseTime: time.Duration(result.TookUs) * time.Microsecond,
		ResultCount:  result.Total,
	})
}

// TrackSearchEvent records a new search event, stamping it when Timestamp is zero.
func (s *Service) TrackSearchEvent(event model.SearchEvent) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	s.events = append(s.events, event)
	if len(s.events) > s.maxEvents {
		s.events = s.events[len(s.events)-s.maxEvents:]
	}
}

// Events returns a copy of the recorded events, oldest first.
func (s *Service) Events() []model.SearchEvent {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	out := make([]model.SearchEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Reset discards every recorded event.
func (s *Service) Reset() {
	s.mutex.Lock()
	s.events = s.events[:0]
	s.mutex.Unlock()
	s.logger.Info("analytics reset")
}

// GetDashboardData aggregates the events recorded after since.
// A zero since covers every recorded event.
func (s *Service) GetDashboardData(since time.Time) model.AnalyticsDashboard {
	s.mutex.RLock()
	events := filterEventsByTime(s.events, since)
	s.mutex.RUnlock()

	dashboard := model.AnalyticsDashboard{
		TotalSearches:            len(events),
		AvgResponseTimeUs:        calculateAvgResponseTime(events).Microseconds(),
		PopularSearches:          getPopularSearches(events),
		SimilarityUsage:          getSimilarityUsage(events),
		ResponseTimeDistribution: getResponseTimeDistribution(events),
		SearchTypes:              getSearchTypeStats(events),
	}
	dashboard.PresetUsage = s.getPresetUsage(events)
	dashboard.ActivePresets = len(dashboard.PresetUsage)

	zero := 0
	for _, event := range events {
		if event.ResultCount == 0 {
			zero++
		}
	}
	if len(events) > 0 {
		dashboard.ZeroResultRate = float64(zero) / float64(len(events))
	}
	return dashboard
}

// ClassifySearch names the parts of a request that constrain the result.
func ClassifySearch(req services.SearchRequest) string {
	freeText := strings.TrimSpace(req.QueryString) != ""
	structured := len(req.Fields) > 0 || req.StartDate != "" || req.EndDate != ""
	switch {
	case freeText && structured:
		return model.SearchTypeCombined
	case freeText:
		return model.SearchTypeFreeText
	case structured:
		return model.SearchTypeStructured
	default:
		return model.SearchTypeMatchAll
	}
}

func filterEventsByTime(events []model.SearchEvent, since time.Time) []model.SearchEvent {
	filtered := make([]model.SearchEvent, 0, len(events))
	for _, event := range events {
		if since.IsZero() || !event.Timestamp.Before(since) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

func calculateAvgResponseTime(events []model.SearchEvent) time.Duration {
	if len(events) == 0 {
		return 0
	}
	var total time.Duration
	for _, event := range events {
		total += event.ResponseTime
	}
	return total / time.Duration(len(events))
}

// getPopularSearches returns the most repeated free-text queries, ties broken by query.
func getPopularSearches(events []model.SearchEvent) []model.PopularSearch {
	counts := make(map[string]int)
	for _, event := range events {
		if event.Query != "" {
			counts[event.Query]++
		}
	}

	popular := make([]model.PopularSearch, 0, len(counts))
	for q, n := range counts {
		popular = append(popular, model.PopularSearch{Query: q, SearchCount: n})
	}
	sort.Slice(popular, func(i, j int) bool {
		if popular[i].SearchCount != popular[j].SearchCount {
			return popular[i].SearchCount > popular[j].SearchCount
		}
		return popular[i].Query < popular[j].Query
	})
	if len(popular) > popularSearchLimit {
		popular = popular[:popularSearchLimit]
	}
	return popular
}

// getPresetUsage returns one entry per built preset plus any preset seen only in events.
func (s *Service) getPresetUsage(events []model.SearchEvent) []model.PresetUsage {
	usage := make(map[string]*model.PresetUsage)
	if s.presets != nil {
		for _, info := range s.presets.ListPresets() {
			usage[info.Name] = &model.PresetUsage{Preset: info.Name, DocumentCount: info.Documents}
		}
	}

	totals := make(map[string]int)
	for _, event := range events {
		u, ok := usage[event.Preset]
		if !ok {
			u = &model.PresetUsage{Preset: event.Preset}
			usage[event.Preset] = u
		}
		u.SearchCount++
		if event.ResultCount == 0 {
			u.ZeroResultCount++
		}
		totals[event.Preset] += event.ResultCount
	}

	out := make([]model.PresetUsage, 0, len(usage))
	for name, u := range usage {
		if u.SearchCount > 0 {
			u.AvgResultCount = float64(totals[name]) / float64(u.SearchCount)
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Preset < out[j].Preset })
	return out
}

func getSimilarityUsage(events []model.SearchEvent) map[string]int {
	usage := make(map[string]int)
	for _, event := range events {
		if event.Similarity != "" {
			usage[event.Similarity]++
		}
	}
	return usage
}

func getResponseTimeDistribution(events []model.SearchEvent) model.ResponseTimeDistribution {
	dist := model.ResponseTimeDistribution{}
	total := len(events)
	if total == 0 {
		return dist
	}

	for _, event := range events {
		switch rt := event.ResponseTime; {
		case rt < time.Millisecond:
			dist.Bucket0To1ms++
		case rt < 10*time.Millisecond:
			dist.Bucket1To10ms++
		case rt < 100*time.Millisecond:
			dist.Bucket10To100ms++
		default:
			dist.Bucket100msPlus++
		}
	}

	dist.Percentage0To1 = float64(dist.Bucket0To1ms) / float64(total) * 100
	dist.Percentage1To10 = float64(dist.Bucket1To10ms) / float64(total) * 100
	dist.Percentage10To100 = float64(dist.Bucket10To100ms) / float64(total) * 100
	dist.Percentage100Plus = float64(dist.Bucket100msPlus) / float64(total) * 100
	return dist
}

func getSearchTypeStats(events []model.SearchEvent) model.SearchTypeStats {
	stats := model.SearchTypeStats{}
	for _, event := range events {
		switch event.SearchType {
		case model.SearchTypeFreeText:
			stats.FreeText++
		case model.SearchTypeStructured:
			stats.Structured++
		case model.SearchTypeCombined:
			stats.Combined++
		case model.SearchTypeMatchAll:
			stats.MatchAll++
		}
	}
	return stats
}
