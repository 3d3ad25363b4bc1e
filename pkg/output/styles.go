package output

import (
	_ "embed"
	"io"

	"github.com/arthur-debert/remnant/pkg/errors"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

//go:embed styles.yaml
var defaultStyles []byte

// ColorDef is an adaptive colour definition
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef is a style definition
type StyleDef struct {
	Bold       bool   `yaml:"bold,omitempty"`
	Italic     bool   `yaml:"italic,omitempty"`
	Underline  bool   `yaml:"underline,omitempty"`
	Foreground string `yaml:"foreground,omitempty"`
}

// StylesConfig is the complete styles document
type StylesConfig struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

// Styles maps semantic names to lipgloss styles bound to one renderer
type Styles map[string]lipgloss.Style

// ParseStyles decodes a styles document
func ParseStyles(data []byte) (StylesConfig, error) {
	var cfg StylesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return StylesConfig{}, errors.Wrap(err, errors.ErrConfigParse, "invalid styles document")
	}
	return cfg, nil
}

// NewStyles builds the styles for w. Without colour no style is defined and
// every name renders its input unchanged.
func NewStyles(w io.Writer, cfg StylesConfig, color bool) Styles {
	if !color {
		return Styles{}
	}
	renderer := lipgloss.NewRenderer(w)

	styles := make(Styles, len(cfg.Styles))
	for name, def := range cfg.Styles {
		style := renderer.NewStyle().
			Bold(def.Bold).
			Italic(def.Italic).
			Underline(def.Underline)
		if c, ok := cfg.Colors[def.Foreground]; ok {
			style = style.Foreground(lipgloss.AdaptiveColor{Light: c.Light, Dark: c.Dark})
		} else if def.Foreground != "" {
			style = style.Foreground(lipgloss.Color(def.Foreground))
		}
		styles[name] = style
	}
	return styles
}

// Apply renders text with the named style, or returns it unchanged when
// the style is unknown
func (s Styles) Apply(name, text string) string {
	style, ok := s[name]
	if !ok {
		return text
	}
	return style.Render(text)
}
