package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// OutputMode defines the output format for CLI commands
type OutputMode string

const (
	// ModeText renders human readable reports
	ModeText OutputMode = "text"
	// ModeJSON outputs data as JSON
	ModeJSON OutputMode = "json"
	// ModeYAML outputs data as YAML
	ModeYAML OutputMode = "yaml"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	ruleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	noteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	labelStyle   = lipgloss.NewStyle().Bold(true)
)

const ruleWidth = 60

// Formatter writes command results in the selected output mode.
type Formatter struct {
	stdout io.Writer
	stderr io.Writer
	mode   OutputMode
	quiet  bool
	color  bool
}

// New creates a new Formatter
func New(stdout, stderr io.Writer, mode OutputMode, quiet, color bool) *Formatter {
	return &Formatter{
		stdout: stdout,
		stderr: stderr,
		mode:   mode,
		quiet:  quiet,
		color:  color,
	}
}

// Mode returns the output mode.
func (f *Formatter) Mode() OutputMode { return f.mode }

// Structured reports whether output is machine readable.
func (f *Formatter) Structured() bool { return f.mode == ModeJSON || f.mode == ModeYAML }

// Render writes data as JSON or YAML, or calls text in text mode.
func (f *Formatter) Render(data any, text func(w io.Writer) error) error {
	switch f.mode {
	case ModeJSON:
		return f.PrintJSON(data)
	case ModeYAML:
		return f.PrintYAML(data)
	default:
		return text(f.stdout)
	}
}

// PrintJSON outputs data as JSON to stdout
func (f *Formatter) PrintJSON(data any) error {
	enc := json.NewEncoder(f.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// PrintYAML outputs data as YAML to stdout
func (f *Formatter) PrintYAML(data any) error {
	enc := yaml.NewEncoder(f.stdout)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

// PrintTable outputs rows aligned with text/tabwriter.
func (f *Formatter) PrintTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	headerLine := make([]string, len(headers))
	for i, h := range headers {
		headerLine[i] = strings.ToUpper(h)
		if f.color {
			headerLine[i] = color.New(color.Bold).Sprint(headerLine[i])
		}
	}
	if _, err := fmt.Fprintln(tw, strings.Join(headerLine, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Heading writes a title underlined by a rule.
func (f *Formatter) Heading(w io.Writer, title string) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n\n",
		f.style(headingStyle, title),
		f.style(ruleStyle, strings.Repeat("=", ruleWidth)))
	return err
}

// Note writes a dimmed disclaimer paragraph. Suppressed in quiet mode.
func (f *Formatter) Note(w io.Writer, lines ...string) error {
	if f.quiet || len(lines) == 0 {
		return nil
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, f.style(noteStyle, l)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// Field writes "label: value", substituting fallback for an empty value.
func (f *Formatter) Field(w io.Writer, indent, label, value, fallback string) error {
	if value == "" {
		value = fallback
	}
	_, err := fmt.Fprintf(w, "%s%s %s\n", indent, f.style(labelStyle, label+":"), value)
	return err
}

// PrintSummary outputs a summary message (unless quiet mode). In structured
// modes it goes to stderr so stdout stays parseable.
func (f *Formatter) PrintSummary(message string) error {
	if f.quiet {
		return nil
	}

	if f.Structured() {
		_, err := fmt.Fprintln(f.stderr, message)
		return err
	}

	if f.color {
		_, err := color.New(color.FgGreen).Fprintln(f.stdout, message)
		return err
	}

	_, err := fmt.Fprintln(f.stdout, message)
	return err
}

// PrintError outputs an error with its code and suggestions. JSON mode
// writes an error object to stdout; other modes write to stderr.
func (f *Formatter) PrintError(err error, code string, suggestions []string) error {
	if err == nil {
		return nil
	}

	if f.mode == ModeJSON {
		out := map[string]any{
			"success": false,
			"error":   err.Error(),
		}
		if code != "" {
			out["error_code"] = code
		}
		if len(suggestions) > 0 {
			out["suggestions"] = suggestions
		}
		return f.PrintJSON(out)
	}

	var sb strings.Builder
	if f.color {
		sb.WriteString(color.RedString("Error: %v\n", err))
	} else {
		sb.WriteString(fmt.Sprintf("Error: %v\n", err))
	}
	if len(suggestions) > 0 {
		sb.WriteString("\nSuggestions:\n")
		for _, s := range suggestions {
			sb.WriteString(fmt.Sprintf("  → %s\n", s))
		}
	}
	_, writeErr := io.WriteString(f.stderr, sb.String())
	return writeErr
}

func (f *Formatter) style(s lipgloss.Style, text string) string {
	if !f.color {
		return text
	}
	return s.Render(text)
}

func (f *Formatter) good(text string) string {
	if !f.color {
		return text
	}
	return color.GreenString("%s", text)
}

func (f *Formatter) bad(text string) string {
	if !f.color {
		return text
	}
	return color.RedString("%s", text)
}

// ValidateMode checks if the output mode is valid
func ValidateMode(mode string) error {
	switch OutputMode(strings.ToLower(mode)) {
	case ModeText, ModeJSON, ModeYAML:
		return nil
	default:
		return fmt.Errorf("invalid output mode: %s (must be 'text', 'json' or 'yaml')", mode)
	}
}

// ParseMode converts a string to OutputMode
func ParseMode(mode string) OutputMode {
	switch strings.ToLower(mode) {
	case "json":
		return ModeJSON
	case "yaml", "yml":
		return ModeYAML
	default:
		return ModeText
	}
}
