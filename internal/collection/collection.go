// Package collection loads the document collection from an XML feed or a JSON array.
package collection

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	internalErrors "github.com/gcbaptista/searchlab/internal/errors"
	"github.com/gcbaptista/searchlab/internal/logger"
	"github.com/gcbaptista/searchlab/model"
)

// Supported collection formats.
const (
	FormatXML  = "xml"
	FormatJSON = "json"
)

// pubDateLayouts are tried in order when parsing <pubDate>.
var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// feed is the XML collection: a root element holding <item> records.
type feed struct {
	Items []item `xml:"item"`
}

type item struct {
	ID          string `xml:"id"`
	Title       string `xml:"title"`
	Abstract    string `xml:"abstract"`
	Description string `xml:"description"`
	Query       string `xml:"query"`
	SearchTask  string `xml:"search_task_number"`
	Relevance   string `xml:"relevance"`
	PubDate     string `xml:"pubDate"`
}

// Load reads the collection at path. An empty format is inferred from the file extension.
func Load(path, format string) ([]model.Document, error) {
	if format == "" {
		format = InferFormat(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening collection: %w", err)
	}
	defer f.Close()

	log := logger.WithComponent("collection")
	docs, err := Read(f, format, log)
	if err != nil {
		return nil, fmt.Errorf("reading collection %s: %w", path, err)
	}
	log.Info("collection loaded", "path", path, "format", format, "documents", len(docs))
	return docs, nil
}

// InferFormat maps a file extension to a collection format; anything but .json is XML.
func InferFormat(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatXML
}

// Read decodes a collection from r.
func Read(r io.Reader, format string, log *slog.Logger) ([]model.Document, error) {
	if log == nil {
		log = logger.Discard()
	}
	switch strings.ToLower(format) {
	case FormatXML:
		return readXML(r, log)
	case FormatJSON:
		return readJSON(r)
	default:
		return nil, internalErrors.NewConfigError("collection format", format)
	}
}

func readXML(r io.Reader, log *slog.Logger) ([]model.Document, error) {
	var f feed
	if err := xml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding XML feed: %w", err)
	}

	docs := make([]model.Document, 0, len(f.Items))
	for i, it := range f.Items {
		id := strings.TrimSpace(it.ID)
		if id == "" {
			id = fmt.Sprintf("doc-%05d", i)
		}
		doc := model.Document{
			ID:      id,
			Text:    make(map[string]string, 4),
			Numeric: make(map[string]int64, 3),
		}
		setText(doc.Text, model.FieldTitle, it.Title)
		setText(doc.Text, model.FieldAbstract, it.Abstract)
		setText(doc.Text, model.FieldDescription, it.Description)
		setText(doc.Text, model.FieldQuery, it.Query)

		if task, ok := parseInt(it.SearchTask); ok {
			doc.Numeric[model.FieldSearchTask] = task
		} else if strings.TrimSpace(it.SearchTask) != "" {
			log.Warn("ignoring malformed search task", "document", id, "value", it.SearchTask)
		}
		if rel, ok := parseRelevance(it.Relevance); ok {
			doc.Numeric[model.FieldRelevance] = rel
		}
		if published, ok := ParsePubDate(it.PubDate); ok {
			doc.Numeric[model.FieldPublished] = published
		} else if strings.TrimSpace(it.PubDate) != "" {
			log.Warn("ignoring malformed pubDate", "document", id, "value", it.PubDate)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func readJSON(r io.Reader) ([]model.Document, error) {
	var docs []model.Document
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decoding JSON documents: %w", err)
	}
	for i := range docs {
		if strings.TrimSpace(docs[i].ID) == "" {
			docs[i].ID = fmt.Sprintf("doc-%05d", i)
		}
	}
	return docs, nil
}

// ParsePubDate converts a publication date to milliseconds since the Unix epoch.
func ParsePubDate(value string) (int64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC().UnixMilli(), true
		}
	}
	return 0, false
}

func setText(fields map[string]string, name, value string) {
	if value = strings.TrimSpace(value); value != "" {
		fields[name] = value
	}
}

func parseInt(value string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	return n, err == nil
}

// parseRelevance accepts 0/1 as well as true/false.
func parseRelevance(value string) (int64, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true":
		return 1, true
	case "0", "false":
		return 0, true
	default:
		return 0, false
	}
}
