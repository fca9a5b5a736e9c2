package search

import (
	"strconv"

	"github.com/gcbaptista/searchlab/index"
	"github.com/gcbaptista/searchlab/model"
)

// Collect projects matches onto their stored values, keeping the order of matches.
// fields selects the values to return; when empty every stored text field is returned.
// A requested numeric field is rendered in base 10.
func Collect(idx *index.Index, matches []Match, fields []string) []model.ResultRecord {
	records := make([]model.ResultRecord, 0, len(matches))
	for _, m := range matches {
		doc, ok := idx.Document(m.DocID)
		if !ok {
			continue
		}
		record := model.ResultRecord{
			DocumentID: doc.ID,
			Fields:     projectFields(doc, fields),
			Score:      m.Score,
		}
		if relevant, ok := doc.IsRelevant(); ok {
			record.Relevant = &relevant
		}
		records = append(records, record)
	}
	return records
}

func projectFields(doc model.Document, fields []string) map[string]string {
	if len(fields) == 0 {
		out := make(map[string]string, len(doc.Text))
		for name, value := range doc.Text {
			out[name] = value
		}
		return out
	}
	out := make(map[string]string, len(fields))
	for _, name := range fields {
		if v, ok := doc.TextField(name); ok {
			out[name] = v
		} else if n, ok := doc.NumericField(name); ok {
			out[name] = strconv.FormatInt(n, 10)
		}
	}
	return out
}
