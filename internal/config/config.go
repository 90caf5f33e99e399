// Package config loads the optional loki.yaml file: palette overrides,
// tab width, indent unit, and grammar keyword-list overrides, as a small
// YAML struct with defaulted fields.
package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// Palette maps highlight class names to SGR color codes a terminal
// renderer applies; zero value for a field means "use the renderer's
// built-in default".
type Palette struct {
	Comment   string `yaml:"comment"`
	MLComment string `yaml:"mlcomment"`
	Keyword1  string `yaml:"keyword1"`
	Keyword2  string `yaml:"keyword2"`
	String    string `yaml:"string"`
	Number    string `yaml:"number"`
	Match     string `yaml:"match"`
	NonPrint  string `yaml:"nonprint"`
}

// GrammarOverride is one entry of the grammars list: a grammar name and a
// keyword list. Load parses and merges it; nothing applies it to a
// built-in grammar.
type GrammarOverride struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Config is the top-level shape of loki.yaml.
type Config struct {
	TabWidth   int               `yaml:"tab_width"`
	IndentUnit string            `yaml:"indent_unit"`
	Palette    Palette           `yaml:"palette"`
	Grammars   []GrammarOverride `yaml:"grammars"`
}

// Default returns the built-in defaults, used as is when --config is not
// given.
func Default() Config {
	return Config{
		TabWidth:   8,
		IndentUnit: "  ",
	}
}

// Load reads and parses path, returning Default() merged over a
// zero-valued field set when path is empty (mirroring
// ParseGeneratorConfig's "" -> zero-value contract).
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	var loaded Config
	if err := yaml.Unmarshal(buf, &loaded); err != nil {
		return cfg, err
	}
	return merge(cfg, loaded), nil
}

// merge overlays non-zero fields of override onto base, the same
// precedence sqldef's MergeGeneratorConfig uses.
func merge(base, override Config) Config {
	if override.TabWidth != 0 {
		base.TabWidth = override.TabWidth
	}
	if override.IndentUnit != "" {
		base.IndentUnit = override.IndentUnit
	}
	if override.Palette != (Palette{}) {
		base.Palette = override.Palette
	}
	if len(override.Grammars) > 0 {
		base.Grammars = override.Grammars
	}
	return base
}
