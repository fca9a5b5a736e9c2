package collection

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalErrors "github.com/gcbaptista/searchlab/internal/errors"
	"github.com/gcbaptista/searchlab/model"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed>
  <item>
    <title>Gesture based interfaces</title>
    <abstract>  Users interact with gestures. </abstract>
    <description>A study</description>
    <query>gesture user interface</query>
    <search_task_number>1</search_task_number>
    <relevance>1</relevance>
    <pubDate>Sun, 18 Dec 2011 00:00:00 +0000</pubDate>
  </item>
  <item>
    <id>custom-id</id>
    <title>Korean summit</title>
    <search_task_number>2</search_task_number>
    <relevance>false</relevance>
    <pubDate>2011-12-19</pubDate>
  </item>
  <item>
    <title>Broken metadata</title>
    <search_task_number>one</search_task_number>
    <pubDate>yesterday</pubDate>
  </item>
</feed>`

func TestRead_XML(t *testing.T) {
	docs, err := Read(strings.NewReader(testFeed), FormatXML, nil)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	first := docs[0]
	assert.Equal(t, "doc-00000", first.ID)
	assert.Equal(t, "Gesture based interfaces", first.Text[model.FieldTitle])
	assert.Equal(t, "Users interact with gestures.", first.Text[model.FieldAbstract])
	assert.Equal(t, "gesture user interface", first.Text[model.FieldQuery])
	task, ok := first.SearchTask()
	assert.True(t, ok)
	assert.Equal(t, 1, task)
	relevant, ok := first.IsRelevant()
	assert.True(t, ok)
	assert.True(t, relevant)
	assert.Equal(t, int64(1324166400000), first.Numeric[model.FieldPublished])

	second := docs[1]
	assert.Equal(t, "custom-id", second.ID)
	relevant, ok = second.IsRelevant()
	assert.True(t, ok)
	assert.False(t, relevant)
	assert.Equal(t, int64(1324252800000), second.Numeric[model.FieldPublished])
	_, hasDescription := second.TextField(model.FieldDescription)
	assert.False(t, hasDescription)

	third := docs[2]
	_, ok = third.SearchTask()
	assert.False(t, ok, "malformed task is dropped")
	_, ok = third.NumericField(model.FieldPublished)
	assert.False(t, ok, "malformed pubDate is dropped")
	_, ok = third.IsRelevant()
	assert.False(t, ok)
}

func TestRead_JSON(t *testing.T) {
	input := `[
		{"id": "a", "text": {"title": "Touch screens"}, "numeric": {"relevance": 1}},
		{"text": {"title": "No id"}}
	]`

	docs, err := Read(strings.NewReader(input), FormatJSON, nil)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "Touch screens", docs[0].Text[model.FieldTitle])
	assert.Equal(t, "doc-00001", docs[1].ID)
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(strings.NewReader("<feed><item>"), FormatXML, nil)
	assert.Error(t, err)

	_, err = Read(strings.NewReader("{"), FormatJSON, nil)
	assert.Error(t, err)

	_, err = Read(strings.NewReader(""), "csv", nil)
	assert.True(t, errors.Is(err, internalErrors.ErrConfig))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	xmlPath := filepath.Join(dir, "collection.xml")
	require.NoError(t, os.WriteFile(xmlPath, []byte(testFeed), 0o644))

	docs, err := Load(xmlPath, "")
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	_, err = Load(filepath.Join(dir, "missing.xml"), "")
	assert.Error(t, err)
}

func TestInferFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, InferFormat("docs.JSON"))
	assert.Equal(t, FormatXML, InferFormat("collection.xml"))
	assert.Equal(t, FormatXML, InferFormat("collection"))
}

func TestParsePubDate(t *testing.T) {
	tests := []struct {
		value string
		want  int64
		ok    bool
	}{
		{"Mon, 19 Dec 2011 00:00:00 +0000", 1324252800000, true},
		{"Mon, 19 Dec 2011 02:00:00 +0200", 1324252800000, true},
		{"2011-12-19T00:00:00Z", 1324252800000, true},
		{"2011-12-19 00:00:01", 1324252801000, true},
		{"", 0, false},
		{"19/12/2011", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, ok := ParsePubDate(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
