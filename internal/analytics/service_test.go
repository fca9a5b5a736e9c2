package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/searchlab/config"
	"github.com/gcbaptista/searchlab/internal/logger"
	"github.com/gcbaptista/searchlab/model"
	"github.com/gcbaptista/searchlab/services"
)

// mockPresetManager lists fixed presets and resolves none of them.
type mockPresetManager struct {
	presets []services.PresetInfo
}

func (m *mockPresetManager) GetPreset(_ string) (services.PresetAccessor, error) { return nil, nil }
func (m *mockPresetManager) ListPresets() []services.PresetInfo                  { return m.presets }

func newTestService(opts ...Option) *Service {
	presets := &mockPresetManager{presets: []services.PresetInfo{
		{Name: "bm25-porter-stop", Documents: 120},
		{Name: "vsm-none-none", Documents: 120},
	}}
	return NewService(presets, append([]Option{WithLogger(logger.Discard())}, opts...)...)
}

func TestAnalyticsService_TrackSearch(t *testing.T) {
	service := newTestService()
	fixed := time.Date(2011, 12, 18, 10, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return fixed }

	service.TrackSearch("vsm-none-none",
		services.SearchRequest{QueryString: " kim AND korea "},
		services.SearchResult{Total: 3, Took: 0, TookUs: 350, Echo: services.QueryEcho{Similarity: config.SimilarityVectorSpace, Parsed: "MUST(title:kim title:korea)"}},
	)

	events := service.Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.SearchEvent{
		Preset:       "vsm-none-none",
		Query:        "kim AND korea",
		Parsed:       "MUST(title:kim title:korea)",
		Similarity:   "vsm",
		SearchType:   model.SearchTypeFreeText,
		ResponseTime: 350 * time.Microsecond,
		ResultCount:  3,
		Timestamp:    fixed,
	}, events[0])

	dashboard := service.GetDashboardData(time.Time{})
	assert.Equal(t, int64(350), dashboard.AvgResponseTimeUs, "sub-millisecond searches keep their latency")
	assert.Equal(t, 1, dashboard.ResponseTimeDistribution.Bucket0To1ms)
}

func TestAnalyticsService_MaxEvents(t *testing.T) {
	service := newTestService(WithMaxEvents(3))
	for _, q := range []string{"a", "b", "c", "d", "e"} {
		service.TrackSearchEvent(model.SearchEvent{Preset: "vsm-none-none", Query: q})
	}

	events := service.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "c", events[0].Query)
	assert.Equal(t, "e", events[2].Query)

	service.Reset()
	assert.Empty(t, service.Events())
}

func TestAnalyticsService_GetDashboardData(t *testing.T) {
	service := newTestService()
	now := time.Now()

	events := []model.SearchEvent{
		{Preset: "vsm-none-none", Query: "kim", Similarity: "vsm", SearchType: model.SearchTypeFreeText, ResponseTime: 500 * time.Microsecond, ResultCount: 2, Timestamp: now.Add(-time.Minute)},
		{Preset: "vsm-none-none", Query: "kim", Similarity: "vsm", SearchType: model.SearchTypeFreeText, ResponseTime: 5 * time.Millisecond, ResultCount: 4, Timestamp: now.Add(-time.Minute)},
		{Preset: "bm25-porter-stop", Query: "seoul", Similarity: "bm25", SearchType: model.SearchTypeCombined, ResponseTime: 50 * time.Millisecond, ResultCount: 0, Timestamp: now.Add(-time.Minute)},
		{Preset: "dropped", SearchType: model.SearchTypeMatchAll, ResponseTime: 200 * time.Millisecond, ResultCount: 9, Timestamp: now.Add(-time.Minute)},
		{Preset: "vsm-none-none", Query: "old", Similarity: "vsm", SearchType: model.SearchTypeFreeText, ResultCount: 1, Timestamp: now.Add(-48 * time.Hour)},
	}
	for _, event := range events {
		service.TrackSearchEvent(event)
	}

	t.Run("recent window", func(t *testing.T) {
		dashboard := service.GetDashboardData(now.Add(-time.Hour))

		assert.Equal(t, 4, dashboard.TotalSearches)
		assert.Equal(t, 0.25, dashboard.ZeroResultRate)
		assert.Equal(t, 3, dashboard.ActivePresets)
		assert.Equal(t, []model.PopularSearch{{Query: "kim", SearchCount: 2}, {Query: "seoul", SearchCount: 1}}, dashboard.PopularSearches)
		assert.Equal(t, map[string]int{"vsm": 2, "bm25": 1}, dashboard.SimilarityUsage)
		assert.Equal(t, model.SearchTypeStats{FreeText: 2, Combined: 1, MatchAll: 1}, dashboard.SearchTypes)

		dist := dashboard.ResponseTimeDistribution
		assert.Equal(t, 1, dist.Bucket0To1ms)
		assert.Equal(t, 1, dist.Bucket1To10ms)
		assert.Equal(t, 1, dist.Bucket10To100ms)
		assert.Equal(t, 1, dist.Bucket100msPlus)
		assert.InDelta(t, 25.0, dist.Percentage100Plus, 1e-9)

		require.Len(t, dashboard.PresetUsage, 3)
		assert.Equal(t, model.PresetUsage{Preset: "bm25-porter-stop", DocumentCount: 120, SearchCount: 1, ZeroResultCount: 1}, dashboard.PresetUsage[0])
		assert.Equal(t, "dropped", dashboard.PresetUsage[1].Preset)
		assert.Equal(t, model.PresetUsage{Preset: "vsm-none-none", DocumentCount: 120, SearchCount: 2, AvgResultCount: 3}, dashboard.PresetUsage[2])
	})

	t.Run("every event", func(t *testing.T) {
		dashboard := service.GetDashboardData(time.Time{})
		assert.Equal(t, 5, dashboard.TotalSearches)
	})

	t.Run("empty window", func(t *testing.T) {
		dashboard := service.GetDashboardData(now.Add(time.Hour))
		assert.Zero(t, dashboard.TotalSearches)
		assert.Zero(t, dashboard.ZeroResultRate)
		assert.Zero(t, dashboard.AvgResponseTimeUs)
		assert.Empty(t, dashboard.PopularSearches)
		assert.Len(t, dashboard.PresetUsage, 2)
	})
}

func TestClassifySearch(t *testing.T) {
	tests := []struct {
		name string
		req  services.SearchRequest
		want string
	}{
		{"empty", services.SearchRequest{QueryString: "  "}, model.SearchTypeMatchAll},
		{"free text", services.SearchRequest{QueryString: "kim"}, model.SearchTypeFreeText},
		{"fields", services.SearchRequest{Fields: map[string]config.FieldTerms{"title": {Include: []string{"kim"}}}}, model.SearchTypeStructured},
		{"date only", services.SearchRequest{EndDate: "2011-12-18"}, model.SearchTypeStructured},
		{"both", services.SearchRequest{QueryString: "kim", StartDate: "2011-12-18"}, model.SearchTypeCombined},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifySearch(tt.req))
		})
	}
}

func TestNewService_NilPresets(t *testing.T) {
	service := NewService(nil, WithLogger(logger.Discard()))
	service.TrackSearchEvent(model.SearchEvent{Preset: "vsm-none-none", ResultCount: 1})

	dashboard := service.GetDashboardData(time.Time{})
	require.Len(t, dashboard.PresetUsage, 1)
	assert.Equal(t, 1.0, dashboard.PresetUsage[0].AvgResultCount)
}
