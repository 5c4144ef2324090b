// Package lang implements the Tokenizer Registry (spec.md §4.1, C1): a
// persistent mapping from language code to lexical-analysis configuration
// name, seeded with a known-good default set and open to administrative
// mutation.
package lang

import "strings"

// Config is one row of the registry: a language code mapped to the
// tokenizer configuration the lexical store should use for it.
type Config struct {
	Code      string
	Name      string
	Installed bool
}

// seed is the default mapping per spec.md §4.1.
func seed() map[string]Config {
	m := map[string]Config{
		"en":      {Code: "en", Name: "english", Installed: true},
		"zh":      {Code: "zh", Name: "jieba", Installed: true},
		"zh_cn":   {Code: "zh_cn", Name: "jieba", Installed: true},
		"zh_tw":   {Code: "zh_tw", Name: "jieba", Installed: true},
		"ja":      {Code: "ja", Name: "simple", Installed: true},
		"ko":      {Code: "ko", Name: "simple", Installed: true},
		"ar":      {Code: "ar", Name: "simple", Installed: true},
		"es":      {Code: "es", Name: "spanish", Installed: true},
		"fr":      {Code: "fr", Name: "french", Installed: true},
		"de":      {Code: "de", Name: "german", Installed: true},
		"it":      {Code: "it", Name: "italian", Installed: true},
		"ru":      {Code: "ru", Name: "russian", Installed: true},
		"default": {Code: "default", Name: "simple", Installed: true},
	}
	return m
}

// Registry is an in-process, mutex-free, single-writer/many-reader cache
// of LanguageConfig rows (spec.md §5's only permitted shared in-process
// cache besides the embedding cache). It is read-only after warm-up in
// normal operation; Install/Uninstall are rare administrative mutations
// expected to run without concurrent lookups.
type Registry struct {
	rows map[string]Config
}

// NewRegistry returns a Registry seeded with the default mapping.
func NewRegistry() *Registry {
	return &Registry{rows: seed()}
}

// NewRegistryFromRows builds a Registry from persisted rows (used when
// loading LanguageConfig from the store at startup), falling back to the
// seed defaults for any code the store has no row for.
func NewRegistryFromRows(rows []Config) *Registry {
	r := &Registry{rows: seed()}
	for _, row := range rows {
		r.rows[normalizeCode(row.Code)] = row
	}
	return r
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// Lookup resolves a language code to its tokenizer config name per
// spec.md §4.1's policy: exact code; else split on `_` and try the
// prefix; else `default`; else synthesize a `simple` row on the fly.
func (r *Registry) Lookup(code string) Config {
	norm := normalizeCode(code)
	if norm == "" {
		norm = "default"
	}
	if c, ok := r.rows[norm]; ok {
		return c
	}
	if i := strings.IndexByte(norm, '_'); i > 0 {
		prefix := norm[:i]
		if c, ok := r.rows[prefix]; ok {
			return c
		}
	}
	if c, ok := r.rows["default"]; ok {
		return c
	}
	return Config{Code: norm, Name: "simple", Installed: false}
}

// Install adds or overwrites a registry row.
func (r *Registry) Install(c Config) {
	r.rows[normalizeCode(c.Code)] = Config{Code: normalizeCode(c.Code), Name: c.Name, Installed: c.Installed}
}

// Uninstall marks a row as not installed, without removing it from the
// map — spec.md never specifies hard-delete for registry rows, and
// retaining the row lets Lookup still report the expected config name
// for diagnostics.
func (r *Registry) Uninstall(code string) {
	norm := normalizeCode(code)
	if c, ok := r.rows[norm]; ok {
		c.Installed = false
		r.rows[norm] = c
	}
}

// All returns a snapshot of every registry row, sorted by code, for
// administrative listing.
func (r *Registry) All() []Config {
	out := make([]Config, 0, len(r.rows))
	for _, c := range r.rows {
		out = append(out, c)
	}
	sortConfigs(out)
	return out
}

func sortConfigs(cs []Config) {
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j].Code < cs[j-1].Code; j-- {
			cs[j], cs[j-1] = cs[j-1], cs[j]
		}
	}
}
