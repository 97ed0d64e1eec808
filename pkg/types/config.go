package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgents are rotated across retry attempts. The first is used for
	// the initial request.
	UserAgents []string `json:"user_agents" yaml:"user_agents" mapstructure:"user_agents"`

	// MaxRetries is the number of attempts made per page (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// FetchConfig holds settings for page retrieval.
type FetchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// RequestDelay is the minimum gap between consecutive page requests and
	// the base of the linear retry backoff (default 2s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay" mapstructure:"request_delay"`
}

// ImageConfig holds settings for weapon image downloads.
type ImageConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Enabled turns on image discovery and download in scrape.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// OutputDir receives the by_game, by_weapon and thumbnails directories
	// and the image report (default "images").
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// RequestDelay is the minimum gap between image requests and the base
	// of the retry backoff (default 1s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay" mapstructure:"request_delay"`

	// MinBytes rejects downloads smaller than this as broken (default 1024).
	MinBytes int64 `json:"min_bytes" yaml:"min_bytes" mapstructure:"min_bytes"`
}

// TemplateSlot names the field a prose template fills.
type TemplateSlot string

const (
	SlotRealWorld TemplateSlot = "real_world"
	SlotInFiction TemplateSlot = "in_fiction"
)

// TemplateConfig is an extra prose template supplied through configuration.
// The pattern's first capture group is the recovered name.
type TemplateConfig struct {
	Slot    TemplateSlot `json:"slot" yaml:"slot" mapstructure:"slot"`
	Pattern string       `json:"pattern" yaml:"pattern" mapstructure:"pattern"`
}

// ExtractionConfig holds settings for the extraction stage.
type ExtractionConfig struct {
	// Strategy selects content- or index-driven traversal.
	Strategy ExtractStrategy `json:"strategy" yaml:"strategy" mapstructure:"strategy"`

	// CategoryLevel is the heading level of category headings (default 2).
	CategoryLevel int `json:"category_level" yaml:"category_level" mapstructure:"category_level"`

	// MinEntryLevel and MaxEntryLevel bound entry heading levels (default 3..4).
	MinEntryLevel int `json:"min_entry_level" yaml:"min_entry_level" mapstructure:"min_entry_level"`
	MaxEntryLevel int `json:"max_entry_level" yaml:"max_entry_level" mapstructure:"max_entry_level"`

	// ProseWindow is how many blocks after an entry heading are scanned
	// for corroborating prose (default 3).
	ProseWindow int `json:"prose_window" yaml:"prose_window" mapstructure:"prose_window"`

	// ExcludedCategories are case-insensitive substrings that mark a
	// category heading as non-weapon content.
	ExcludedCategories []string `json:"excluded_categories" yaml:"excluded_categories" mapstructure:"excluded_categories"`

	// ExtraTemplates are appended after the built-in prose templates.
	ExtraTemplates []TemplateConfig `json:"extra_templates,omitempty" yaml:"extra_templates,omitempty" mapstructure:"extra_templates"`
}

// DedupConfig holds settings for the deduplication stage.
type DedupConfig struct {
	// Enabled turns deduplication on for the scrape pipeline.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Strategy is exact, fuzzy, or comprehensive (default).
	Strategy DedupStrategy `json:"strategy" yaml:"strategy" mapstructure:"strategy"`

	// NameThreshold is the minimum sequence-similarity ratio (default 0.85).
	NameThreshold float64 `json:"name_threshold" yaml:"name_threshold" mapstructure:"name_threshold"`

	// PartialThreshold is the minimum shorter/longer length ratio for a
	// containment match (default 0.90).
	PartialThreshold float64 `json:"partial_threshold" yaml:"partial_threshold" mapstructure:"partial_threshold"`
}

// ExportFormat selects an export file format.
type ExportFormat string

const (
	FormatCSV      ExportFormat = "csv"
	FormatJSON     ExportFormat = "json"
	FormatYAML     ExportFormat = "yaml"
	FormatMarkdown ExportFormat = "markdown"
	FormatAll      ExportFormat = "all"
)

// ExportConfig holds settings for the export stage.
type ExportConfig struct {
	// OutputDir receives the export files and the dedup report.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// Formats lists the formats to write. "all" expands to every format.
	Formats []ExportFormat `json:"formats" yaml:"formats" mapstructure:"formats"`

	// BaseName is the file name stem (default "weapons").
	BaseName string `json:"base_name" yaml:"base_name" mapstructure:"base_name"`
}

// CatalogConfig holds settings for the SQLite catalog.
type CatalogConfig struct {
	// Path is the database file. Empty disables the catalog in scrape.
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// MaxResults bounds find results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
	// File, when set, receives a rotated copy of the log.
	File string `json:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`
}

// Source is one page to scrape.
type Source struct {
	ID  string `json:"id" yaml:"id" mapstructure:"id"`
	URL string `json:"url" yaml:"url" mapstructure:"url"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Sources    []Source         `json:"sources" yaml:"sources" mapstructure:"sources"`
	Fetch      FetchConfig      `json:"fetch" yaml:"fetch" mapstructure:"fetch"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	Dedup      DedupConfig      `json:"dedup" yaml:"dedup" mapstructure:"dedup"`
	Export     ExportConfig     `json:"export" yaml:"export" mapstructure:"export"`
	Catalog    CatalogConfig    `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
	Images     ImageConfig      `json:"images" yaml:"images" mapstructure:"images"`
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultExcludedCategories mark wiki sections that never hold weapons.
var DefaultExcludedCategories = []string{
	"cast", "crew", "trivia", "gallery", "references",
	"see also", "external links", "contents",
}

// DefaultUserAgents are rotated on retries.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// DefaultSources are the game pages scraped when none are configured.
var DefaultSources = []Source{
	{ID: "MW2_2022", URL: "https://www.imfdb.org/wiki/Call_of_Duty:_Modern_Warfare_II_(2022)"},
	{ID: "MW3_2023", URL: "https://www.imfdb.org/wiki/Call_of_Duty:_Modern_Warfare_III_(2023)"},
	{ID: "Ready_or_Not", URL: "https://www.imfdb.org/wiki/Ready_or_Not"},
	{ID: "Delta_Force_2024", URL: "https://www.imfdb.org/wiki/Delta_Force_(2024_VG)"},
}

// DefaultExtractionConfig returns the extraction defaults.
func DefaultExtractionConfig() ExtractionConfig {
	return ExtractionConfig{
		Strategy:           ExtractContent,
		CategoryLevel:      2,
		MinEntryLevel:      3,
		MaxEntryLevel:      4,
		ProseWindow:        3,
		ExcludedCategories: append([]string(nil), DefaultExcludedCategories...),
	}
}

// DefaultDedupConfig returns the deduplication defaults.
func DefaultDedupConfig() DedupConfig {
	return DedupConfig{
		Strategy:         DedupComprehensive,
		NameThreshold:    0.85,
		PartialThreshold: 0.90,
	}
}

// DefaultImageConfig returns the image download defaults. Downloads are
// off unless enabled.
func DefaultImageConfig() ImageConfig {
	return ImageConfig{
		HTTPConfig: HTTPConfig{
			Timeout:    30 * time.Second,
			UserAgents: append([]string(nil), DefaultUserAgents...),
			MaxRetries: 3,
		},
		OutputDir:    "images",
		RequestDelay: time.Second,
		MinBytes:     1024,
	}
}

// DefaultPipelineConfig returns the full set of defaults.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Sources: append([]Source(nil), DefaultSources...),
		Fetch: FetchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:    30 * time.Second,
				UserAgents: append([]string(nil), DefaultUserAgents...),
				MaxRetries: 3,
			},
			RequestDelay: 2 * time.Second,
		},
		Extraction: DefaultExtractionConfig(),
		Dedup:      DefaultDedupConfig(),
		Export: ExportConfig{
			OutputDir: "output",
			Formats:   []ExportFormat{FormatAll},
			BaseName:  "weapons",
		},
		Catalog: CatalogConfig{MaxResults: 20},
		Images:  DefaultImageConfig(),
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}
