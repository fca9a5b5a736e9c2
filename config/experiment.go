package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Experiment is the top-level experiment file.
type Experiment struct {
	Collection CollectionConfig `yaml:"collection"`
	Presets    []string         `yaml:"presets"`
	Queries    []QueryConfig    `yaml:"queries"`
	Search     SearchConfig     `yaml:"search"`
	Logging    LoggingConfig    `yaml:"logging"`
	Server     ServerConfig     `yaml:"server"`
}

// CollectionConfig says where the documents come from and which of them are indexed.
type CollectionConfig struct {
	Path string `yaml:"path"`
	// Format is "xml" or "json"; empty means infer from the file extension.
	Format string `yaml:"format"`
	// SearchTask restricts indexing to documents tagged with this task number; 0 indexes all.
	SearchTask int      `yaml:"searchTask"`
	Fields     []string `yaml:"fields"`
	// FailOnUnselected turns a document rejected by the selector into a build error.
	FailOnUnselected bool `yaml:"failOnUnselected"`
}

// FieldTerms holds the include and exclude lists for one field.
type FieldTerms struct {
	Include []string `yaml:"include" json:"include,omitempty"`
	Exclude []string `yaml:"exclude" json:"exclude,omitempty"`
}

// QueryConfig is one query of the experiment, either free text or structured.
type QueryConfig struct {
	Name       string                `yaml:"name"`
	Text       string                `yaml:"text"`
	Fields     map[string]FieldTerms `yaml:"fields"`
	StartDate  string                `yaml:"startDate"`
	EndDate    string                `yaml:"endDate"`
	Similarity Similarity            `yaml:"similarity"` // empty keeps the preset similarity
}

// SearchConfig controls evaluation and presentation.
type SearchConfig struct {
	DefaultField string      `yaml:"defaultField"`
	DateField    string      `yaml:"dateField"`
	DayBoundary  DayBoundary `yaml:"dayBoundary"`
	SortMode     SortMode    `yaml:"sortMode"`
	SortField    string      `yaml:"sortField"`
	Limit        int         `yaml:"limit"`
	BM25         BM25Params  `yaml:"bm25"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	MetricsEnabled bool     `yaml:"metricsEnabled"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
	// RateLimit is the sustained requests per second; 0 disables limiting.
	RateLimit float64 `yaml:"rateLimit"`
	RateBurst int     `yaml:"rateBurst"`
}

// Load reads a YAML experiment file (if provided) and applies environment-variable
// overrides on top of the defaults.
func Load(path string) (*Experiment, error) {
	cfg := DefaultExperiment()
	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator
		if err != nil {
			return nil, fmt.Errorf("reading experiment file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing experiment file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultExperiment mirrors the original course setup: task 1 abstracts, the porter/VSM
// preset and the "gesture AND user AND interface" query.
func DefaultExperiment() *Experiment {
	return &Experiment{
		Collection: CollectionConfig{
			SearchTask: 1,
			Fields:     []string{"title", "abstract", "description"},
		},
		Presets: []string{"vsm-porter-stop"},
		Queries: []QueryConfig{
			{Name: "default", Text: "gesture AND user AND interface"},
		},
		Search: SearchConfig{
			DefaultField: "abstract",
			DateField:    "published",
			DayBoundary:  DayBoundaryLiteral,
			SortMode:     SortRanked,
			SortField:    "abstract",
			BM25:         DefaultBM25Params(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Port:           8080,
			MetricsEnabled: true,
		},
	}
}

// Validate checks every enumerated value, returning a ConfigError for the first bad one.
func (e *Experiment) Validate() error {
	if _, err := LookupPresets(e.Presets); err != nil {
		return err
	}
	if err := e.Search.DayBoundary.Validate(); err != nil {
		return err
	}
	if err := e.Search.SortMode.Validate(); err != nil {
		return err
	}
	for i, q := range e.Queries {
		if q.Similarity == "" {
			continue
		}
		sim, err := ParseSimilarity(string(q.Similarity))
		if err != nil {
			return err
		}
		e.Queries[i].Similarity = sim
	}
	if e.Search.Limit < 0 {
		return fmt.Errorf("search limit must not be negative, got %d", e.Search.Limit)
	}
	if e.Server.RateLimit < 0 {
		return fmt.Errorf("server rate limit must not be negative, got %g", e.Server.RateLimit)
	}
	return nil
}

// LoadEnvFile exports the variables of a dotenv file so that the SL_* overrides
// of Load pick them up. Variables already set in the environment win.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides reads SL_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Experiment) {
	if v := os.Getenv("SL_COLLECTION_PATH"); v != "" {
		cfg.Collection.Path = v
	}
	if v := os.Getenv("SL_SEARCH_TASK"); v != "" {
		if task, err := strconv.Atoi(v); err == nil {
			cfg.Collection.SearchTask = task
		}
	}
	if v := os.Getenv("SL_PRESETS"); v != "" {
		cfg.Presets = strings.Split(v, ",")
	}
	if v := os.Getenv("SL_DAY_BOUNDARY"); v != "" {
		cfg.Search.DayBoundary = DayBoundary(v)
	}
	if v := os.Getenv("SL_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SL_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("SL_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}
