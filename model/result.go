package model

// ResultRecord is one presented search hit: the stored values asked for,
// the relevance flag when the document has one, and the score.
type ResultRecord struct {
	DocumentID string            `json:"document_id"`
	Fields     map[string]string `json:"fields"`
	Relevant   *bool             `json:"relevant,omitempty"`
	Score      float64           `json:"score"`
}
