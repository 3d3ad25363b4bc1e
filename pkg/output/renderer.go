package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/remnant/pkg/errors"
	"github.com/arthur-debert/remnant/pkg/logging"
	"github.com/arthur-debert/remnant/pkg/types"
	"gopkg.in/yaml.v3"
)

// Association lists the files recorded for one application
type Association struct {
	App   string   `json:"app" yaml:"app"`
	Files []string `json:"files" yaml:"files"`
}

// Renderer writes results in one output format
type Renderer struct {
	writer io.Writer
	format Format
	styles Styles
}

// NewRenderer creates a Renderer. FormatAuto resolves against w when it is
// a file and falls back to plain text otherwise.
func NewRenderer(w io.Writer, format Format) (*Renderer, error) {
	log := logging.GetLogger("output")

	if format == FormatAuto {
		format = FormatText
		if f, ok := w.(*os.File); ok {
			format = DetectFormat(f)
		}
	}

	cfg, err := ParseStyles(defaultStyles)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("format", format.String()).Msg("Creating renderer")
	return &Renderer{
		writer: w,
		format: format,
		styles: NewStyles(w, cfg, format == FormatTerminal),
	}, nil
}

// Format returns the resolved output format
func (r *Renderer) Format() Format {
	return r.format
}

// Render writes a discovery result
func (r *Renderer) Render(result types.Result) error {
	if result.Items == nil {
		result.Items = []types.Item{}
	}
	switch r.format {
	case FormatJSON:
		return r.writeJSON(result)
	case FormatYAML:
		return r.writeYAML(result)
	default:
		return r.write(r.resultText(result))
	}
}

// RenderAssociations writes registry contents
func (r *Renderer) RenderAssociations(list []Association) error {
	if list == nil {
		list = []Association{}
	}
	switch r.format {
	case FormatJSON:
		return r.writeJSON(list)
	case FormatYAML:
		return r.writeYAML(list)
	}

	var b strings.Builder
	if len(list) == 0 {
		b.WriteString(r.styles.Apply("Muted", "No recorded associations") + "\n")
	}
	for _, a := range list {
		b.WriteString(r.styles.Apply("Header", a.App) + "\n")
		for _, f := range a.Files {
			b.WriteString("  " + r.styles.Apply("Path", f) + "\n")
		}
	}
	return r.write(b.String())
}

// RenderError writes an error message
func (r *Renderer) RenderError(err error) error {
	return r.write(r.styles.Apply("Warning", "Error:") + " " + err.Error() + "\n")
}

func (r *Renderer) resultText(result types.Result) string {
	var b strings.Builder

	b.WriteString(r.styles.Apply("Header", result.App.Name))
	if result.App.BundleID != "" {
		b.WriteString(" " + r.styles.Apply("Muted", "("+result.App.BundleID+")"))
	}
	if result.Arch != "" && result.Arch != types.ArchUnknown {
		b.WriteString(" " + r.styles.Apply("Muted", string(result.Arch)))
	}
	b.WriteString("\n")

	if len(result.Items) == 0 {
		b.WriteString(r.styles.Apply("Warning", "No leftovers found") + "\n")
		return b.String()
	}

	for _, item := range result.Items {
		size := r.styles.Apply("Size", fmt.Sprintf("%10s", HumanSize(item.RealSize)))
		b.WriteString(size + "  " + r.styles.Apply("Path", item.Path) + "\n")
	}

	real, _ := result.TotalSize()
	noun := "items"
	if len(result.Items) == 1 {
		noun = "item"
	}
	b.WriteString(r.styles.Apply("Total", fmt.Sprintf("%d %s, %s on disk", len(result.Items), noun, HumanSize(real))) + "\n")
	return b.String()
}

func (r *Renderer) write(s string) error {
	if _, err := io.WriteString(r.writer, s); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to write output")
	}
	return nil
}

func (r *Renderer) writeJSON(v interface{}) error {
	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode JSON")
	}
	return nil
}

func (r *Renderer) writeYAML(v interface{}) error {
	enc := yaml.NewEncoder(r.writer)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode YAML")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode YAML")
	}
	return nil
}
