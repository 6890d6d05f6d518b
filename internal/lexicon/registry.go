package lexicon

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// entry holds the frozen tables for one module.
type entry struct {
	name       string
	shortLabel string
	icon       string
	color      string
	normalizer int
	signals    map[string][]string
	// signalOrder fixes iteration order so analyzer output is deterministic.
	signalOrder []string
	templates   map[Bucket]string
}

// Registry is the read-only module registry. It is fully built before it is
// shared and never mutated afterwards, so concurrent readers need no locking.
type Registry struct {
	entries map[Module]*entry
}

// Default returns the registry built from the embedded tables.
func Default() *Registry {
	return defaultRegistry
}

var defaultRegistry = mustBuild(defaultTables())

func mustBuild(tables map[Module]moduleTable) *Registry {
	r, err := build(tables)
	if err != nil {
		panic(err)
	}
	return r
}

func build(tables map[Module]moduleTable) (*Registry, error) {
	entries := make(map[Module]*entry, len(tables))
	for _, m := range All() {
		t, ok := tables[m]
		if !ok {
			return nil, fmt.Errorf("lexicon: missing tables for module %s", m)
		}
		if t.Normalizer <= 0 {
			return nil, fmt.Errorf("lexicon: module %s has non-positive normalizer", m)
		}
		if len(t.Signals) == 0 {
			return nil, fmt.Errorf("lexicon: module %s has no signals", m)
		}
		for _, b := range []Bucket{BucketNone, BucketSingle, BucketPair, BucketMany} {
			if t.Templates[b] == "" {
				return nil, fmt.Errorf("lexicon: module %s missing template for bucket %d", m, b)
			}
		}
		// The analyzer substitutes the matched phrases into every template
		// above the none bucket, so the verb count must match or the
		// rendered narrative carries fmt error markers.
		if strings.Contains(t.Templates[BucketNone], "%") {
			return nil, fmt.Errorf("lexicon: module %s none-bucket template must not contain format verbs", m)
		}
		for _, b := range []Bucket{BucketSingle, BucketPair, BucketMany} {
			tmpl := t.Templates[b]
			if strings.Count(tmpl, "%s") != 1 || strings.Count(tmpl, "%") != 1 {
				return nil, fmt.Errorf("lexicon: module %s bucket %d template needs exactly one %%s verb", m, b)
			}
		}
		order := make([]string, 0, len(t.Signals))
		signals := make(map[string][]string, len(t.Signals))
		for name, forms := range t.Signals {
			if len(forms) == 0 {
				return nil, fmt.Errorf("lexicon: module %s signal %s has no surface forms", m, name)
			}
			order = append(order, name)
			signals[name] = append([]string(nil), forms...)
		}
		sort.Strings(order)
		templates := make(map[Bucket]string, len(t.Templates))
		for b, tmpl := range t.Templates {
			templates[b] = tmpl
		}
		entries[m] = &entry{
			name:        t.Name,
			shortLabel:  t.ShortLabel,
			icon:        t.Icon,
			color:       t.Color,
			normalizer:  t.Normalizer,
			signals:     signals,
			signalOrder: order,
			templates:   templates,
		}
	}
	return &Registry{entries: entries}, nil
}

// moduleTable is the loadable form of one module's tables.
type moduleTable struct {
	Name       string              `yaml:"name"`
	ShortLabel string              `yaml:"short_label"`
	Icon       string              `yaml:"icon"`
	Color      string              `yaml:"color"`
	Normalizer int                 `yaml:"normalizer"`
	Signals    map[string][]string `yaml:"signals"`
	Templates  map[Bucket]string   `yaml:"-"`

	// YAML uses named buckets instead of numeric ones.
	TemplateText map[string]string `yaml:"templates"`
}

var bucketNames = map[string]Bucket{
	"none":   BucketNone,
	"single": BucketSingle,
	"pair":   BucketPair,
	"many":   BucketMany,
}

// LoadFile builds a registry from the embedded tables overlaid with the YAML
// file at path. Any field present in the file replaces the embedded value for
// that module; absent fields keep their defaults. Errors are fatal at startup.
func LoadFile(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lexicon: read %s: %w", path, err)
	}
	var doc struct {
		Modules map[Module]moduleTable `yaml:"modules"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("lexicon: parse %s: %w", path, err)
	}

	tables := defaultTables()
	for m, override := range doc.Modules {
		base, ok := tables[m]
		if !ok {
			return nil, fmt.Errorf("lexicon: unknown module %q in %s", m, path)
		}
		if override.Name != "" {
			base.Name = override.Name
		}
		if override.ShortLabel != "" {
			base.ShortLabel = override.ShortLabel
		}
		if override.Icon != "" {
			base.Icon = override.Icon
		}
		if override.Color != "" {
			base.Color = override.Color
		}
		if override.Normalizer > 0 {
			base.Normalizer = override.Normalizer
		}
		if len(override.Signals) > 0 {
			base.Signals = override.Signals
		}
		for name, text := range override.TemplateText {
			b, ok := bucketNames[name]
			if !ok {
				return nil, fmt.Errorf("lexicon: unknown template bucket %q in %s", name, path)
			}
			base.Templates[b] = text
		}
		tables[m] = base
	}
	return build(tables)
}

// Name returns the module's localized human name.
func (r *Registry) Name(m Module) string {
	return r.entries[m].name
}

// ShortLabel returns the emoji-prefixed label used for plain-text replies.
func (r *Registry) ShortLabel(m Module) string {
	return r.entries[m].shortLabel
}

// Icon returns the module's icon token.
func (r *Registry) Icon(m Module) string {
	return r.entries[m].icon
}

// Palette returns the module's canonical #RRGGBB color.
func (r *Registry) Palette(m Module) string {
	return r.entries[m].color
}

// Normalizer returns the raw-score normalizer for the module.
func (r *Registry) Normalizer(m Module) int {
	return r.entries[m].normalizer
}

// SignalNames returns the module's signal names in deterministic order.
func (r *Registry) SignalNames(m Module) []string {
	return append([]string(nil), r.entries[m].signalOrder...)
}

// SurfaceForms returns the surface forms for one signal of a module.
func (r *Registry) SurfaceForms(m Module, signal string) []string {
	return append([]string(nil), r.entries[m].signals[signal]...)
}

// Lexicon returns a copy of the module's full signal → surface-form mapping.
func (r *Registry) Lexicon(m Module) map[string][]string {
	e := r.entries[m]
	out := make(map[string][]string, len(e.signals))
	for name, forms := range e.signals {
		out[name] = append([]string(nil), forms...)
	}
	return out
}

// Template returns the narrative template for the module and bucket.
func (r *Registry) Template(m Module, b Bucket) string {
	return r.entries[m].templates[b]
}
