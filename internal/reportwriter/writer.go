// Package reportwriter renders validation reports for people and tools.
//
// Supported formats: xml (test step report), json, yaml, text and xlsx.
package reportwriter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/kohesio-validator/internal/report"
)

// Format selects the output representation.
type Format string

const (
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatText Format = "text"
	FormatXLSX Format = "xlsx"
)

// Formats lists every supported format.
var Formats = []Format{FormatXML, FormatJSON, FormatYAML, FormatText, FormatXLSX}

// ParseFormat converts a user-supplied name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "xml":
		return FormatXML, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "text", "txt":
		return FormatText, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported report format %q", name)
}

// Extension returns the file extension used for the format, without a dot.
func (f Format) Extension() string {
	if f == FormatText {
		return "txt"
	}
	return string(f)
}

// Write renders r to w in the given format.
func Write(w io.Writer, r *report.Report, format Format) error {
	switch format {
	case FormatXML:
		return WriteXML(w, r)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatYAML:
		return WriteYAML(w, r)
	case FormatText:
		return WriteText(w, r)
	case FormatXLSX:
		return WriteXLSX(w, r)
	}
	return fmt.Errorf("unsupported report format %q", format)
}

// document is the serialised shape shared by the JSON and YAML writers.
type document struct {
	ID        string          `json:"id" yaml:"id"`
	InputName string          `json:"inputName" yaml:"inputName"`
	Source    string          `json:"source,omitempty" yaml:"source,omitempty"`
	Date      string          `json:"date" yaml:"date"`
	Result    report.Outcome  `json:"result" yaml:"result"`
	Counters  report.Counters `json:"counters" yaml:"counters"`
	Truncated bool            `json:"truncated" yaml:"truncated"`
	Items     []report.Item   `json:"items" yaml:"items"`
}

func newDocument(r *report.Report) document {
	return document{
		ID:        r.ID,
		InputName: r.InputName,
		Source:    r.Source,
		Date:      r.Date.Format(time.RFC3339),
		Result:    r.Result,
		Counters:  r.Counters,
		Truncated: r.Truncated,
		Items:     r.Items(),
	}
}

// WriteJSON renders r as indented JSON.
func WriteJSON(w io.Writer, r *report.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(newDocument(r)); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}
	return nil
}

// WriteYAML renders r as YAML.
func WriteYAML(w io.Writer, r *report.Report) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(newDocument(r)); err != nil {
		return fmt.Errorf("failed to write YAML report: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to write YAML report: %w", err)
	}
	return nil
}

// WriteText renders a short human-readable summary followed by every item.
func WriteText(w io.Writer, r *report.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Report:   %s\n", r.ID)
	if r.Source != "" {
		fmt.Fprintf(&b, "Source:   %s\n", r.Source)
	}
	fmt.Fprintf(&b, "Date:     %s\n", r.Date.Format(time.RFC3339))
	fmt.Fprintf(&b, "Result:   %s\n", r.Result)
	fmt.Fprintf(&b, "Errors:   %d\n", r.Counters.Errors)
	fmt.Fprintf(&b, "Warnings: %d\n", r.Counters.Warnings)
	fmt.Fprintf(&b, "Infos:    %d\n", r.Counters.Infos)

	items := r.Items()
	if len(items) > 0 {
		b.WriteString("\n")
		for i, item := range items {
			fmt.Fprintf(&b, "%d. %-7s %s\n", i+1, item.Severity, item.Description)
		}
	}
	if r.Truncated {
		fmt.Fprintf(&b, "\nOnly the first %d items are listed.\n", report.MaxReportItems)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write text report: %w", err)
	}
	return nil
}
