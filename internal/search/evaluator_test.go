package search

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/searchlab/config"
	"github.com/gcbaptista/searchlab/index"
	"github.com/gcbaptista/searchlab/internal/analysis"
	internalErrors "github.com/gcbaptista/searchlab/internal/errors"
	"github.com/gcbaptista/searchlab/internal/indexing"
	"github.com/gcbaptista/searchlab/internal/logger"
	"github.com/gcbaptista/searchlab/internal/query"
	"github.com/gcbaptista/searchlab/model"
)

// --- Test Helpers ---

func noStemConfig() config.AnalyzerConfig {
	return config.AnalyzerConfig{Tokenizer: config.TokenizerStandard, Stemmer: config.StemmerNone, Stopwords: config.StopwordsEnglish}
}

func published(year int, month time.Month, day, hour, minute, sec, milli int) int64 {
	return time.Date(year, month, day, hour, minute, sec, milli*int(time.Millisecond), time.UTC).UnixMilli()
}

func newTestDoc(id, title, description string, publishedAt int64, relevant int64) model.Document {
	return model.Document{
		ID: id,
		Text: map[string]string{
			model.FieldTitle:       title,
			model.FieldDescription: description,
		},
		Numeric: map[string]int64{
			model.FieldPublished: publishedAt,
			model.FieldRelevance: relevant,
		},
	}
}

func testDocuments() []model.Document {
	return []model.Document{
		newTestDoc("d0", "Kim visits Korea", "Leaders meet in Korea", published(2011, time.December, 18, 0, 0, 0, 0), 1),
		newTestDoc("d1", "Summit in Seoul", "A summit of leaders", published(2011, time.December, 17, 23, 59, 59, 999), 0),
		newTestDoc("d2", "Kim Jong speaks", "Statement from the leader", published(2011, time.December, 19, 0, 0, 0, 0), 1),
		newTestDoc("d3", "Gesture interfaces", "User studies of gesture input", published(2011, time.December, 18, 12, 0, 0, 0), 0),
	}
}

func buildTestIndex(t *testing.T, docs []model.Document, cfg config.AnalyzerConfig) (*index.Index, *analysis.Analyzer) {
	t.Helper()
	idx, err := indexing.Build(docs, cfg, indexing.WithLogger(logger.Discard()))
	require.NoError(t, err)
	a, err := analysis.New(cfg)
	require.NoError(t, err)
	return idx, a
}

func externalIDs(t *testing.T, idx *index.Index, matches []Match) []string {
	t.Helper()
	ids := make([]string, len(matches))
	for i, m := range matches {
		doc, ok := idx.Document(m.DocID)
		require.True(t, ok)
		ids[i] = doc.ID
	}
	return ids
}

func docIDSet(matches []Match) map[uint32]struct{} {
	set := make(map[uint32]struct{}, len(matches))
	for _, m := range matches {
		set[m.DocID] = struct{}{}
	}
	return set
}

// --- Test Cases ---

func TestEvaluate_IncludeRequiresAllTerms(t *testing.T) {
	docs := []model.Document{
		newTestDoc("kim", "Kim visits Korea", "", 0, 1),
		newTestDoc("seoul", "Summit in Seoul", "", 0, 0),
	}
	idx, a := buildTestIndex(t, docs, noStemConfig())
	node := query.NewBuilder(a).FieldQuery("title", []string{"kim", "korea"}, nil)

	matches, err := Evaluate(idx, node, config.SimilarityVectorSpace)
	require.NoError(t, err)
	assert.Equal(t, []string{"kim"}, externalIDs(t, idx, matches))
}

func TestEvaluate_ExcludeRejectsAnyTerm(t *testing.T) {
	idx, a := buildTestIndex(t, testDocuments(), noStemConfig())
	b := query.NewBuilder(a)

	t.Run("exclude alone keeps every other document", func(t *testing.T) {
		q := b.Build(query.StructuredQuery{Clauses: []query.FieldClause{{Field: "description", Exclude: []string{"korea"}}}})
		matches, err := Evaluate(idx, q, config.SimilarityVectorSpace)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"d1", "d2", "d3"}, externalIDs(t, idx, matches))
	})

	t.Run("excluded even when includes match", func(t *testing.T) {
		q := b.Build(query.StructuredQuery{Clauses: []query.FieldClause{
			{Field: "title", Include: []string{"kim"}},
			{Field: "description", Exclude: []string{"korea"}},
		}})
		matches, err := Evaluate(idx, q, config.SimilarityVectorSpace)
		require.NoError(t, err)
		assert.Equal(t, []string{"d2"}, externalIDs(t, idx, matches))
	})

	t.Run("any listed term excludes", func(t *testing.T) {
		q := b.Build(query.StructuredQuery{Clauses: []query.FieldClause{{Field: "description", Exclude: []string{"korea", "summit"}}}})
		matches, err := Evaluate(idx, q, config.SimilarityVectorSpace)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"d2", "d3"}, externalIDs(t, idx, matches))
	})

	t.Run("top-level exclusion group", func(t *testing.T) {
		node := b.FieldQuery("description", nil, []string{"korea"})
		matches, err := Evaluate(idx, node, config.SimilarityBM25)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"d1", "d2", "d3"}, externalIDs(t, idx, matches))
		for _, m := range matches {
			assert.Zero(t, m.Score)
		}
	})
}

func TestEvaluate_EmptyQueryMatchesAll(t *testing.T) {
	idx, _ := buildTestIndex(t, testDocuments(), noStemConfig())

	matches, err := Evaluate(idx, query.NewBooleanGroup(query.Must), config.SimilarityVectorSpace)
	require.NoError(t, err)
	assert.Equal(t, []string{"d0", "d1", "d2", "d3"}, externalIDs(t, idx, matches))
}

func TestEvaluate_ShouldDoesNotRestrictWhenMustPresent(t *testing.T) {
	idx, a := buildTestIndex(t, testDocuments(), noStemConfig())

	node, err := query.Parse("+kim korea", "title", a)
	require.NoError(t, err)
	matches, err := Evaluate(idx, node, config.SimilarityVectorSpace)
	require.NoError(t, err)

	// Both Kim documents match; the one also mentioning Korea ranks first.
	assert.Equal(t, []string{"d0", "d2"}, externalIDs(t, idx, matches))
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestEvaluate_FreeTextOperators(t *testing.T) {
	idx, a := buildTestIndex(t, testDocuments(), noStemConfig())

	tests := []struct {
		query string
		want  []string
	}{
		{"kim korea", []string{"d0", "d2"}},
		{"kim AND korea", []string{"d0"}},
		{"kim AND NOT korea", []string{"d2"}},
		{"NOT kim", []string{"d1", "d3"}},
		{"NOT NOT kim", []string{"d0", "d2"}},
		{"kim -korea", []string{"d2"}},
		{"seoul OR (kim AND korea)", []string{"d0", "d1"}},
		{"(NOT korea)", []string{"d1", "d2", "d3"}},
		{"summit OR (NOT korea)", []string{"d1", "d2", "d3"}},
		{"gesture OR (-korea)", []string{"d1", "d2", "d3"}},
		{"kim AND (NOT korea)", []string{"d2"}},
		{"description:gesture", []string{"d3"}},
		{"the", []string{"d0", "d1", "d2", "d3"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			node, err := query.Parse(tt.query, "title", a)
			require.NoError(t, err)
			matches, err := Evaluate(idx, node, config.SimilarityBM25)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, externalIDs(t, idx, matches))
		})
	}
}

func TestEvaluate_RangeFilter(t *testing.T) {
	idx, _ := buildTestIndex(t, testDocuments(), noStemConfig())

	tests := []struct {
		mode config.DayBoundary
		want []string
	}{
		{config.DayBoundaryLiteral, []string{"d0", "d3"}},
		{config.DayBoundaryShifted, []string{"d2"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			r := query.DateRange(model.FieldPublished, "2011-12-18", "2011-12-18", tt.mode)
			matches, err := Evaluate(idx, query.And(r), config.SimilarityVectorSpace)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, externalIDs(t, idx, matches))
			for _, m := range matches {
				assert.Zero(t, m.Score, "range filter must not score")
			}
		})
	}
}

func TestEvaluate_RoundTripSingleTerm(t *testing.T) {
	for _, stemmer := range []config.StemmerKind{config.StemmerNone, config.StemmerPorter, config.StemmerKStem} {
		t.Run(string(stemmer), func(t *testing.T) {
			cfg := config.AnalyzerConfig{Tokenizer: config.TokenizerStandard, Stemmer: stemmer, Stopwords: config.StopwordsEnglish}
			docs := testDocuments()
			idx, a := buildTestIndex(t, docs, cfg)
			b := query.NewBuilder(a)

			for _, field := range []string{model.FieldTitle, model.FieldDescription} {
				for _, doc := range docs {
					for _, word := range strings.Fields(doc.Text[field]) {
						terms := a.Analyze(word)
						if len(terms) != 1 {
							continue
						}
						node := b.FieldQuery(field, []string{word}, nil)
						matches, err := Evaluate(idx, node, config.SimilarityVectorSpace)
						require.NoError(t, err)

						var want []string
						for _, candidate := range docs {
							if slices.Contains(a.Analyze(candidate.Text[field]), terms[0]) {
								want = append(want, candidate.ID)
							}
						}
						assert.ElementsMatch(t, want, externalIDs(t, idx, matches), "%s:%s", field, word)
					}
				}
			}
		})
	}
}

func TestEvaluate_SimilarityNeverChangesMembership(t *testing.T) {
	idx, a := buildTestIndex(t, testDocuments(), noStemConfig())
	queries := []string{"kim korea", "kim AND korea", "leaders OR gesture", "NOT summit", "+kim -seoul korea"}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			node, err := query.Parse(q, "description", a)
			require.NoError(t, err)

			vsm, err := Evaluate(idx, node, config.SimilarityVectorSpace)
			require.NoError(t, err)
			bm25, err := Evaluate(idx, node, config.SimilarityBM25)
			require.NoError(t, err)

			assert.Equal(t, docIDSet(vsm), docIDSet(bm25))
		})
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	idx, a := buildTestIndex(t, testDocuments(), noStemConfig())
	node, err := query.Parse("kim OR leaders OR gesture", "description", a)
	require.NoError(t, err)

	for _, sim := range []config.Similarity{config.SimilarityVectorSpace, config.SimilarityBM25} {
		first, err := Evaluate(idx, node, sim)
		require.NoError(t, err)
		second, err := Evaluate(idx, node, sim)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestEvaluate_TiesBrokenByDocID(t *testing.T) {
	docs := []model.Document{
		newTestDoc("c", "Touch screens", "", 0, 0),
		newTestDoc("a", "Touch screens", "", 0, 0),
		newTestDoc("b", "Touch screens", "", 0, 0),
	}
	idx, a := buildTestIndex(t, docs, noStemConfig())
	node := query.NewBuilder(a).FieldQuery("title", []string{"touch"}, nil)

	for _, sim := range []config.Similarity{config.SimilarityVectorSpace, config.SimilarityBM25} {
		matches, err := Evaluate(idx, node, sim)
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a", "b"}, externalIDs(t, idx, matches))
	}
}

func TestEvaluate_UnknownSimilarity(t *testing.T) {
	idx, a := buildTestIndex(t, testDocuments(), noStemConfig())
	node := query.NewBuilder(a).FieldQuery("title", []string{"kim"}, nil)

	matches, err := Evaluate(idx, node, config.Similarity("lm-dirichlet"))
	assert.Nil(t, matches)
	assert.True(t, errors.Is(err, internalErrors.ErrConfig))

	// The index stays usable for later calls.
	matches, err = Evaluate(idx, node, config.SimilarityBM25)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestEvaluate_NilArguments(t *testing.T) {
	idx, _ := buildTestIndex(t, testDocuments(), noStemConfig())

	_, err := Evaluate(idx, nil, config.SimilarityVectorSpace)
	assert.True(t, errors.Is(err, internalErrors.ErrInvalidInput))
	_, err = Evaluate(nil, query.NewBooleanGroup(query.Must), config.SimilarityVectorSpace)
	assert.Error(t, err)
}

func TestOrder(t *testing.T) {
	idx, a := buildTestIndex(t, testDocuments(), noStemConfig())
	node, err := query.Parse("kim OR leaders OR summit OR gesture", "title", a)
	require.NoError(t, err)
	matches, err := Evaluate(idx, node, config.SimilarityVectorSpace)
	require.NoError(t, err)

	t.Run("alphabetical by title", func(t *testing.T) {
		ordered, err := Order(idx, matches, Alphabetical(model.FieldTitle))
		require.NoError(t, err)
		assert.Equal(t, []string{"d3", "d2", "d0", "d1"}, externalIDs(t, idx, ordered))
	})

	t.Run("ranked restores score order", func(t *testing.T) {
		alpha, err := Order(idx, matches, Alphabetical(model.FieldTitle))
		require.NoError(t, err)
		ranked, err := Order(idx, alpha, Ranked())
		require.NoError(t, err)
		assert.Equal(t, matches, ranked)
	})

	t.Run("input is not modified", func(t *testing.T) {
		before := append([]Match(nil), matches...)
		_, err := Order(idx, matches, Alphabetical(model.FieldTitle))
		require.NoError(t, err)
		assert.Equal(t, before, matches)
	})

	t.Run("invalid presentations", func(t *testing.T) {
		_, err := Order(idx, matches, Presentation{Mode: "random"})
		assert.True(t, errors.Is(err, internalErrors.ErrConfig))
		_, err = Order(idx, matches, Alphabetical(""))
		assert.True(t, errors.Is(err, internalErrors.ErrInvalidInput))
	})
}

func TestCollect(t *testing.T) {
	idx, _ := buildTestIndex(t, testDocuments(), noStemConfig())
	matches := []Match{{DocID: 2, Score: 1.5}, {DocID: 1, Score: 0.5}}

	records := Collect(idx, matches, []string{model.FieldTitle, model.FieldPublished, "missing"})
	require.Len(t, records, 2)

	assert.Equal(t, "d2", records[0].DocumentID)
	assert.Equal(t, "Kim Jong speaks", records[0].Fields[model.FieldTitle])
	assert.Equal(t, "1324252800000", records[0].Fields[model.FieldPublished])
	assert.NotContains(t, records[0].Fields, "missing")
	require.NotNil(t, records[0].Relevant)
	assert.True(t, *records[0].Relevant)
	assert.Equal(t, 1.5, records[0].Score)

	assert.Equal(t, "d1", records[1].DocumentID)
	require.NotNil(t, records[1].Relevant)
	assert.False(t, *records[1].Relevant)

	all := Collect(idx, matches[:1], nil)
	assert.Contains(t, all[0].Fields, model.FieldTitle)
}
