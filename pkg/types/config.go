package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "ai-research/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries is the number of retries on 429 and 5xx responses (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// RateLimit is the sustained request rate per second. Zero disables limiting.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit"`
}

// DateWindow is a month/day interval inside a single publication year.
// Months and days are rendered zero-padded in query expressions.
type DateWindow struct {
	StartMonth int `json:"start_month" yaml:"start_month" mapstructure:"start_month"`
	EndMonth   int `json:"end_month" yaml:"end_month" mapstructure:"end_month"`
	StartDay   int `json:"start_day" yaml:"start_day" mapstructure:"start_day"`
	EndDay     int `json:"end_day" yaml:"end_day" mapstructure:"end_day"`
}

// MAGConfig holds settings for querying the academic graph Evaluate API.
type MAGConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the Evaluate endpoint.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// SubscriptionKey is sent in the Ocp-Apim-Subscription-Key header.
	SubscriptionKey string `json:"subscription_key,omitempty" yaml:"subscription_key,omitempty" mapstructure:"subscription_key"`

	// EntityName is the composite attribute the terms are matched against (e.g. "F.FN").
	EntityName string `json:"entity_name" yaml:"entity_name" mapstructure:"entity_name"`

	// Terms are the field-of-study names used to select papers.
	Terms []string `json:"terms" yaml:"terms" mapstructure:"terms"`

	// TermsFile optionally points to a YAML file with a top-level "terms" list.
	// When set it replaces Terms.
	TermsFile string `json:"terms_file,omitempty" yaml:"terms_file,omitempty" mapstructure:"terms_file"`

	// Attributes is the list of entity attributes requested for papers.
	Attributes []string `json:"attributes" yaml:"attributes" mapstructure:"attributes"`

	// PageSize is the count sent with each request (default 1000).
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size"`

	// MaxExprLength bounds the encoded length of an id-list expression.
	MaxExprLength int `json:"max_expr_length" yaml:"max_expr_length" mapstructure:"max_expr_length"`

	// MaxPages bounds the number of requests issued for one expression.
	MaxPages int `json:"max_pages" yaml:"max_pages" mapstructure:"max_pages"`

	// StartYear and EndYear bound the collection, both inclusive.
	StartYear int `json:"start_year" yaml:"start_year" mapstructure:"start_year"`
	EndYear   int `json:"end_year" yaml:"end_year" mapstructure:"end_year"`

	// Windows split each year into date intervals, queried in order.
	Windows []DateWindow `json:"windows" yaml:"windows" mapstructure:"windows"`

	// DumpDir is where fetched pages and the collection manifest are written.
	DumpDir string `json:"dump_dir" yaml:"dump_dir" mapstructure:"dump_dir"`

	// DumpPrefix is the file name prefix of page dumps (default "mag").
	DumpPrefix string `json:"dump_prefix" yaml:"dump_prefix" mapstructure:"dump_prefix"`
}

// GeocodeConfig holds settings for the places lookup used to geocode affiliations.
type GeocodeConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// FindPlaceURL is the find-place-from-text endpoint.
	FindPlaceURL string `json:"find_place_url" yaml:"find_place_url" mapstructure:"find_place_url"`

	// DetailsURL is the place details endpoint.
	DetailsURL string `json:"details_url" yaml:"details_url" mapstructure:"details_url"`

	// APIKey authenticates both endpoints.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`
}

// StoreConfig holds settings for the SQLite store.
type StoreConfig struct {
	// Path is the database file (e.g. "data/processed/ai_research.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console.
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	// Output is stdout or stderr.
	Output string `json:"output" yaml:"output" mapstructure:"output"`
}

// MetricsConfig holds settings for the metrics textfile written at exit.
type MetricsConfig struct {
	// File is the path of the Prometheus text exposition file. Empty disables it.
	File string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	MAG     MAGConfig     `json:"mag" yaml:"mag" mapstructure:"mag"`
	Geocode GeocodeConfig `json:"geocode" yaml:"geocode" mapstructure:"geocode"`
	Store   StoreConfig   `json:"store" yaml:"store" mapstructure:"store"`
	Logging LoggingConfig `json:"logging" yaml:"logging" mapstructure:"logging"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
}

// DefaultPaperAttributes is the attribute list requested when collecting papers.
var DefaultPaperAttributes = []string{
	"Id", "Ti", "Pt", "Y", "D", "CC", "RId", "DOI", "PB", "BT", "IA",
	"AA.AuId", "AA.DAuN", "AA.AfId", "AA.DAfN", "AA.S",
	"F.FId", "F.DFN", "F.FN",
	"J.JId", "J.JN", "C.CId", "C.CN",
}

// DefaultPipelineConfig returns the configuration used when no file or
// environment overrides are present.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		MAG: MAGConfig{
			HTTPConfig: HTTPConfig{
				Timeout:    60 * time.Second,
				UserAgent:  "ai-research/0.1",
				MaxRetries: 5,
				RateLimit:  3,
			},
			BaseURL:       "https://api.labs.cognitive.microsoft.com/academic/v1.0/evaluate",
			EntityName:    "F.FN",
			Terms:         []string{"deep learning", "machine learning", "artificial intelligence"},
			Attributes:    append([]string(nil), DefaultPaperAttributes...),
			PageSize:      1000,
			MaxExprLength: 16000,
			MaxPages:      1000,
			StartYear:     2000,
			EndYear:       2020,
			Windows: []DateWindow{
				{StartMonth: 1, EndMonth: 6, StartDay: 1, EndDay: 1},
				{StartMonth: 6, EndMonth: 12, StartDay: 1, EndDay: 31},
			},
			DumpDir:    "data/external",
			DumpPrefix: "mag",
		},
		Geocode: GeocodeConfig{
			HTTPConfig: HTTPConfig{
				Timeout:    30 * time.Second,
				UserAgent:  "ai-research/0.1",
				MaxRetries: 5,
				RateLimit:  10,
			},
			FindPlaceURL: "https://maps.googleapis.com/maps/api/place/findplacefromtext/json",
			DetailsURL:   "https://maps.googleapis.com/maps/api/place/details/json",
		},
		Store: StoreConfig{
			Path: "data/processed/ai_research.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
	}
}
