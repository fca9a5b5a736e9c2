package experiment

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gcbaptista/searchlab/config"
	"github.com/gcbaptista/searchlab/internal/engine"
	internalErrors "github.com/gcbaptista/searchlab/internal/errors"
	"github.com/gcbaptista/searchlab/internal/logger"
	"github.com/gcbaptista/searchlab/model"
)

func flag(v bool) *bool { return &v }

func TestEvaluate(t *testing.T) {
	hits := []model.ResultRecord{
		{DocumentID: "a", Relevant: flag(true)},
		{DocumentID: "b", Relevant: flag(false)},
		{DocumentID: "c", Relevant: flag(true)},
		{DocumentID: "d"},
	}

	tests := []struct {
		name     string
		hits     []model.ResultRecord
		relevant int
		want     Effectiveness
	}{
		{
			name:     "ranked list",
			hits:     hits,
			relevant: 3,
			want: Effectiveness{
				Retrieved: 4, Relevant: 3, RelevantRetrieved: 2,
				Precision: 0.5, Recall: 2.0 / 3.0, AveragePrecision: (1.0 + 2.0/3.0) / 3.0,
			},
		},
		{
			name:     "nothing retrieved",
			relevant: 2,
			want:     Effectiveness{Relevant: 2},
		},
		{
			name:     "no relevant documents",
			hits:     hits[1:2],
			relevant: 0,
			want:     Effectiveness{Retrieved: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.hits, tt.relevant)
			assert.Equal(t, tt.want.Retrieved, got.Retrieved)
			assert.Equal(t, tt.want.RelevantRetrieved, got.RelevantRetrieved)
			assert.InDelta(t, tt.want.Precision, got.Precision, 1e-12)
			assert.InDelta(t, tt.want.Recall, got.Recall, 1e-12)
			assert.InDelta(t, tt.want.AveragePrecision, got.AveragePrecision, 1e-12)
		})
	}
}

func testDocuments() []model.Document {
	doc := func(id, abstract string, relevant int64) model.Document {
		return model.Document{
			ID:      id,
			Text:    map[string]string{model.FieldTitle: id, model.FieldAbstract: abstract},
			Numeric: map[string]int64{model.FieldRelevance: relevant, model.FieldSearchTask: 1},
		}
	}
	return []model.Document{
		doc("d0", "gesture recognition for user interfaces", 1),
		doc("d1", "motion tracking of hands", 0),
		doc("d2", "user interface design with gestures", 1),
		doc("d3", "database indexing", 0),
	}
}

func newTestRunner(t *testing.T, presets ...string) *Runner {
	t.Helper()
	e := engine.NewEngine(testDocuments(), engine.Options{Logger: logger.Discard()})
	t.Cleanup(e.Close)
	resolved, err := config.LookupPresets(presets)
	require.NoError(t, err)
	require.NoError(t, e.BuildPresets(context.Background(), resolved))
	return NewRunner(e, WithLogger(logger.Discard()), WithWorkers(2))
}

func TestRunner_Run(t *testing.T) {
	r := newTestRunner(t, "vsm-porter-stop", "bm25-none-stop")

	report, err := r.Run(context.Background(), []string{"vsm-porter-stop", "bm25-none-stop"}, []config.QueryConfig{
		{Name: "gesture", Text: "gesture AND user"},
		{Text: "motion"},
	})
	require.NoError(t, err)
	require.Len(t, report.Runs, 4)
	require.Len(t, report.Summaries, 2)

	first := report.Runs[0]
	assert.Equal(t, "vsm-porter-stop", first.Preset)
	assert.Equal(t, "gesture", first.Query)
	assert.Equal(t, 2, first.Total, "stemming matches gesture and gestures")
	assert.Equal(t, 2, first.Relevant)
	assert.Equal(t, 1.0, first.Precision)
	assert.Equal(t, 1.0, first.Recall)
	assert.Equal(t, 1.0, first.AveragePrecision)

	assert.Equal(t, "q2", report.Runs[1].Query)
	assert.Equal(t, 0.0, report.Runs[1].Precision)

	unstemmed := report.Runs[2]
	assert.Equal(t, "bm25-none-stop", unstemmed.Preset)
	assert.Equal(t, 1, unstemmed.Total)
	assert.Equal(t, 0.5, unstemmed.Recall)

	assert.Equal(t, "vsm-porter-stop", report.Summaries[0].Preset)
	assert.InDelta(t, 0.5, report.Summaries[0].MAP, 1e-12)
	assert.InDelta(t, 0.25, report.Summaries[1].MeanRecall, 1e-12)
}

func TestRunner_Errors(t *testing.T) {
	r := newTestRunner(t, "vsm-porter-stop")
	queries := []config.QueryConfig{{Text: "gesture"}}

	_, err := r.Run(context.Background(), nil, queries)
	assert.True(t, errors.Is(err, internalErrors.ErrInvalidInput))

	_, err = r.Run(context.Background(), []string{"vsm-porter-stop"}, nil)
	assert.True(t, errors.Is(err, internalErrors.ErrInvalidInput))

	_, err = r.Run(context.Background(), []string{"bm25-kstem-stop"}, queries)
	assert.True(t, errors.Is(err, internalErrors.ErrPresetNotFound))

	_, err = r.Run(context.Background(), []string{"vsm-porter-stop"}, []config.QueryConfig{{Text: "gesture AND"}})
	assert.True(t, errors.Is(err, internalErrors.ErrQuerySyntax))

	_, err = r.Run(context.Background(), []string{"vsm-porter-stop"}, []config.QueryConfig{{Name: "a", Text: "x"}, {Name: "a", Text: "y"}})
	assert.True(t, errors.Is(err, internalErrors.ErrInvalidInput))
}

func TestRequestFor(t *testing.T) {
	q := config.QueryConfig{
		Text:       "gesture",
		Fields:     map[string]config.FieldTerms{"title": {Exclude: []string{"motion"}}},
		StartDate:  "2011-12-18",
		Similarity: config.SimilarityBM25,
	}

	req := RequestFor(q)
	assert.Equal(t, "gesture", req.QueryString)
	assert.Equal(t, q.Fields, req.Fields)
	assert.Equal(t, "2011-12-18", req.StartDate)
	assert.Equal(t, config.SimilarityBM25, req.Similarity)
	assert.Equal(t, config.SortRanked, req.SortMode)
}

func TestRunner_QuerySimilarity(t *testing.T) {
	r := newTestRunner(t, "vsm-porter-stop")

	report, err := r.Run(context.Background(), []string{"vsm-porter-stop"}, []config.QueryConfig{
		{Name: "preset", Text: "gesture"},
		{Name: "override", Text: "gesture", Similarity: config.SimilarityBM25},
	})
	require.NoError(t, err)
	require.Len(t, report.Runs, 2)

	assert.Equal(t, config.SimilarityVectorSpace, report.Runs[0].Echo.Similarity)
	assert.Equal(t, config.SimilarityBM25, report.Runs[1].Echo.Similarity)
	assert.Equal(t, report.Runs[0].Total, report.Runs[1].Total, "similarity never changes membership")
}

func TestReport_Writers(t *testing.T) {
	r := newTestRunner(t, "vsm-porter-stop")
	report, err := r.Run(context.Background(), []string{"vsm-porter-stop"}, []config.QueryConfig{
		{Name: "gesture", Text: "gesture"},
		{Name: "none", Text: "quantum"},
	})
	require.NoError(t, err)

	var text bytes.Buffer
	require.NoError(t, report.WriteText(&text, 1))
	out := text.String()
	assert.Contains(t, out, "PRESET")
	assert.Contains(t, out, "vsm-porter-stop / gesture: 2 hits")
	assert.Contains(t, out, "[R] ")
	assert.Contains(t, out, "... 1 more")
	assert.Contains(t, out, "no results")

	var xlsx bytes.Buffer
	require.NoError(t, report.WriteXLSX(&xlsx))

	f, err := excelize.OpenReader(&xlsx)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{summarySheet, runsSheet}, f.GetSheetList())
	preset, err := f.GetCellValue(summarySheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "vsm-porter-stop", preset)
	query, err := f.GetCellValue(runsSheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "none", query)
}
