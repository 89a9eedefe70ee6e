package ui

import (
	_ "embed"
	"io"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/linkvault/pkg/errors"
)

// Semantic style names defined in styles.yaml
const (
	StyleHeading = "Heading"
	StyleSuccess = "Success"
	StyleWarning = "Warning"
	StyleError   = "Error"
	StyleMuted   = "Muted"
	StylePath    = "Path"
	StyleKind    = "Kind"
)

//go:embed styles.yaml
var embeddedStyles []byte

type colorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

type styleDef struct {
	Bold       bool   `yaml:"bold,omitempty"`
	Italic     bool   `yaml:"italic,omitempty"`
	Foreground string `yaml:"foreground,omitempty"`
}

type styleConfig struct {
	Colors map[string]colorDef `yaml:"colors"`
	Styles map[string]styleDef `yaml:"styles"`
}

// Styles maps semantic names to lipgloss styles bound to one output.
// Unknown names render unstyled.
type Styles struct {
	renderer *lipgloss.Renderer
	styles   map[string]lipgloss.Style
}

// NewStyles builds the embedded styles for w
func NewStyles(w io.Writer) *Styles {
	r := lipgloss.NewRenderer(w)
	s, err := LoadStyles(r, embeddedStyles)
	if err != nil {
		return &Styles{renderer: r, styles: map[string]lipgloss.Style{}}
	}
	return s
}

// LoadStyles parses a YAML style sheet
func LoadStyles(r *lipgloss.Renderer, data []byte) (*Styles, error) {
	var cfg styleConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "failed to parse styles")
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(cfg.Colors))
	for name, def := range cfg.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}

	s := &Styles{renderer: r, styles: make(map[string]lipgloss.Style, len(cfg.Styles))}
	for name, def := range cfg.Styles {
		style := r.NewStyle().Bold(def.Bold).Italic(def.Italic)
		if color, ok := colors[def.Foreground]; ok {
			style = style.Foreground(color)
		}
		s.styles[name] = style
	}
	return s, nil
}

// Get returns the named style
func (s *Styles) Get(name string) lipgloss.Style {
	if style, ok := s.styles[name]; ok {
		return style
	}
	return s.renderer.NewStyle()
}

// Render applies the named style to text
func (s *Styles) Render(name, text string) string {
	return s.Get(name).Render(text)
}
