package model

// Well-known field names of the course collection.
const (
	FieldTitle       = "title"
	FieldAbstract    = "abstract"
	FieldDescription = "description"
	FieldQuery       = "query"

	FieldRelevance  = "relevance"   // 1 relevant, 0 not relevant
	FieldPublished  = "published"   // milliseconds since the Unix epoch, UTC
	FieldSearchTask = "search_task" // search task the document was collected for
)

// Document is an immutable record handed over by the collection loader.
// Text fields are analyzed and stored; numeric fields are stored and filterable.
// Example: doc.Text["title"], doc.Numeric["published"]
type Document struct {
	ID      string            `json:"id"`
	Text    map[string]string `json:"text"`
	Numeric map[string]int64  `json:"numeric,omitempty"`
}

// TextField returns the stored text of a field.
func (d Document) TextField(name string) (string, bool) {
	v, ok := d.Text[name]
	return v, ok
}

// NumericField returns the stored value of a numeric field.
func (d Document) NumericField(name string) (int64, bool) {
	v, ok := d.Numeric[name]
	return v, ok
}

// IsRelevant returns the relevance flag and whether the document carries one.
func (d Document) IsRelevant() (bool, bool) {
	v, ok := d.Numeric[FieldRelevance]
	return v != 0, ok
}

// SearchTask returns the task number the document was collected for.
func (d Document) SearchTask() (int, bool) {
	v, ok := d.Numeric[FieldSearchTask]
	return int(v), ok
}

// Clone returns a deep copy so that stored values cannot be changed through the caller's maps.
func (d Document) Clone() Document {
	c := Document{ID: d.ID}
	if d.Text != nil {
		c.Text = make(map[string]string, len(d.Text))
		for k, v := range d.Text {
			c.Text[k] = v
		}
	}
	if d.Numeric != nil {
		c.Numeric = make(map[string]int64, len(d.Numeric))
		for k, v := range d.Numeric {
			c.Numeric[k] = v
		}
	}
	return c
}
