package model

import (
	"github.com/andybalholm/cascadia"
	"github.com/rotisserie/eris"
)

// SelectorSet holds optional per-field CSS selectors for one source. Empty
// string means the field is not selector-extracted for that source.
type SelectorSet struct {
	Title       string `yaml:"title" mapstructure:"title" json:"title,omitempty"`
	Date        string `yaml:"date" mapstructure:"date" json:"date,omitempty"`
	Time        string `yaml:"time" mapstructure:"time" json:"time,omitempty"`
	DetailURL   string `yaml:"detail_url" mapstructure:"detail_url" json:"detail_url,omitempty"`
	TicketURL   string `yaml:"ticket_url" mapstructure:"ticket_url" json:"ticket_url,omitempty"`
	ImageURL    string `yaml:"image_url" mapstructure:"image_url" json:"image_url,omitempty"`
	Description string `yaml:"description" mapstructure:"description" json:"description,omitempty"`
	Price       string `yaml:"price" mapstructure:"price" json:"price,omitempty"`
	Artists     string `yaml:"artists" mapstructure:"artists" json:"artists,omitempty"`
}

// Empty reports whether no selector is configured.
func (s SelectorSet) Empty() bool {
	return s == SelectorSet{}
}

// ByField returns the configured selectors keyed by field, in a stable order.
func (s SelectorSet) ByField() []struct {
	Field    FieldKey
	Selector string
} {
	pairs := []struct {
		Field    FieldKey
		Selector string
	}{
		{FieldTitle, s.Title},
		{FieldDate, s.Date},
		{FieldTime, s.Time},
		{FieldDetailURL, s.DetailURL},
		{FieldTicketURL, s.TicketURL},
		{FieldImageURL, s.ImageURL},
		{FieldDescription, s.Description},
		{FieldPrice, s.Price},
		{FieldArtists, s.Artists},
	}
	out := pairs[:0]
	for _, p := range pairs {
		if p.Selector != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate compiles every configured selector so a bad selector fails at
// config-load time instead of mid-crawl.
func (s SelectorSet) Validate() error {
	for _, p := range s.ByField() {
		if _, err := cascadia.Compile(p.Selector); err != nil {
			return eris.Wrapf(err, "profile: selector for %s", p.Field)
		}
	}
	return nil
}

// Default fetch tuning, applied when a profile omits the values.
const (
	DefaultWaitMS    = 1500
	DefaultTimeoutMS = 15000
)

// FetchConfig tunes the fetch layer for one source. RenderJS is recorded for
// sources that need a rendered DOM; the HTTP fetcher serves static HTML and
// logs when the flag is set.
type FetchConfig struct {
	RenderJS  bool   `yaml:"render_js" mapstructure:"render_js" json:"render_js"`
	WaitMS    int    `yaml:"wait_ms" mapstructure:"wait_ms" json:"wait_ms"`
	TimeoutMS int    `yaml:"timeout_ms" mapstructure:"timeout_ms" json:"timeout_ms"`
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent" json:"user_agent,omitempty"`
}

// Normalize fills zero values with defaults.
func (f FetchConfig) Normalize() FetchConfig {
	if f.WaitMS <= 0 {
		f.WaitMS = DefaultWaitMS
	}
	if f.TimeoutMS <= 0 {
		f.TimeoutMS = DefaultTimeoutMS
	}
	return f
}

// DiscoveryConfig configures the listing-page discovery phase of a source.
type DiscoveryConfig struct {
	Enabled   bool        `yaml:"enabled" mapstructure:"enabled" json:"enabled"`
	URL       string      `yaml:"url" mapstructure:"url" json:"url,omitempty"`
	Selectors SelectorSet `yaml:"selectors" mapstructure:"selectors" json:"selectors,omitempty"`
}

// DetailConfig configures detail-page enrichment for one source: which
// extractors run, and the CSS selectors when the selector extractor is on.
type DetailConfig struct {
	Enabled      bool        `yaml:"enabled" mapstructure:"enabled" json:"enabled"`
	Selectors    SelectorSet `yaml:"selectors" mapstructure:"selectors" json:"selectors,omitempty"`
	UseJSONLD    bool        `yaml:"use_jsonld" mapstructure:"use_jsonld" json:"use_jsonld"`
	UseOpenGraph bool        `yaml:"use_open_graph" mapstructure:"use_open_graph" json:"use_open_graph"`
	UseHeuristic bool        `yaml:"use_heuristic" mapstructure:"use_heuristic" json:"use_heuristic"`
	UseLLM       bool        `yaml:"use_llm" mapstructure:"use_llm" json:"use_llm"`
	JSONLDOnly   bool        `yaml:"jsonld_only" mapstructure:"jsonld_only" json:"jsonld_only"`
	Fetch        FetchConfig `yaml:"fetch" mapstructure:"fetch" json:"fetch"`
}

// Validate checks the config at construction time. Selector problems are
// caller contract violations and must not surface during merge.
func (d DetailConfig) Validate() error {
	if err := d.Selectors.Validate(); err != nil {
		return err
	}
	if d.JSONLDOnly && !d.UseJSONLD {
		return eris.New("profile: jsonld_only requires use_jsonld")
	}
	return nil
}

// SourceProfile is the declarative per-source crawler configuration.
type SourceProfile struct {
	Name      string          `yaml:"name" mapstructure:"name" json:"name"`
	BaseURL   string          `yaml:"base_url" mapstructure:"base_url" json:"base_url,omitempty"`
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery" json:"discovery"`
	Detail    DetailConfig    `yaml:"detail" mapstructure:"detail" json:"detail"`
}

// Validate checks the whole profile.
func (p SourceProfile) Validate() error {
	if p.Name == "" {
		return eris.New("profile: name is required")
	}
	if err := p.Discovery.Selectors.Validate(); err != nil {
		return eris.Wrapf(err, "profile %s: discovery", p.Name)
	}
	if err := p.Detail.Validate(); err != nil {
		return eris.Wrapf(err, "profile %s: detail", p.Name)
	}
	return nil
}
