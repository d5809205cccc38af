// =============================================================================
// Kohesio Validator - XML Report Writer
// =============================================================================
//
// This module renders a validation report as an XML test step report:
//
//   <?xml version="1.0" encoding="UTF-8"?>
//   <TestStepReport id="...">
//     <date>2024-03-15T09:30:00Z</date>
//     <result>FAILURE</result>
//     <counters nrOfAssertions="0" nrOfErrors="1" nrOfWarnings="0"/>
//     <reports>
//       <error>
//         <description>[Row: 2][Field: X]: message</description>
//         <location>contentToValidate:2:0</location>
//         <value>raw value</value>
//       </error>
//     </reports>
//   </TestStepReport>
//
// Each item element is named after its severity (error, warning, info).
//
// =============================================================================

package reportwriter

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/kohesio-validator/internal/report"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// XMLOptions controls XML rendering.
type XMLOptions struct {
	// Indent is the string used for one level of indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration writes the <?xml ...?> line first.
	// Default: true
	IncludeXMLDeclaration bool

	// RootElement is the name of the document element.
	// Default: "TestStepReport"
	RootElement string
}

// DefaultXMLOptions returns the default XML options.
func DefaultXMLOptions() XMLOptions {
	return XMLOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		RootElement:           "TestStepReport",
	}
}

// =============================================================================
// XML GENERATION
// =============================================================================

// element is a node of the document tree.
type element struct {
	name       string
	attributes [][2]string
	value      string
	children   []element
}

// WriteXML renders r as XML with the default options.
func WriteXML(w io.Writer, r *report.Report) error {
	return WriteXMLWithOptions(w, r, DefaultXMLOptions())
}

// WriteXMLWithOptions renders r as XML.
func WriteXMLWithOptions(w io.Writer, r *report.Report, options XMLOptions) error {
	var buffer bytes.Buffer

	if options.IncludeXMLDeclaration {
		buffer.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	}

	writeElement(&buffer, buildDocument(r, options), options.Indent, 0)

	if _, err := w.Write(buffer.Bytes()); err != nil {
		return fmt.Errorf("failed to write XML report: %w", err)
	}
	return nil
}

// buildDocument turns the report into an element tree.
func buildDocument(r *report.Report, options XMLOptions) element {
	items := r.Items()
	reports := element{name: "reports", children: make([]element, 0, len(items))}
	for _, item := range items {
		reports.children = append(reports.children, buildItemElement(item))
	}

	return element{
		name:       options.RootElement,
		attributes: [][2]string{{"id", r.ID}},
		children: []element{
			{name: "date", value: r.Date.Format(time.RFC3339)},
			{name: "result", value: string(r.Result)},
			{
				name: "counters",
				attributes: [][2]string{
					{"nrOfAssertions", strconv.FormatInt(r.Counters.Infos, 10)},
					{"nrOfErrors", strconv.FormatInt(r.Counters.Errors, 10)},
					{"nrOfWarnings", strconv.FormatInt(r.Counters.Warnings, 10)},
				},
			},
			reports,
		},
	}
}

// buildItemElement creates the element for one report item.
// The value child is omitted when the item has no value.
func buildItemElement(item report.Item) element {
	children := []element{
		{name: "description", value: item.Description},
		{name: "location", value: item.Location},
	}
	if item.Value != "" {
		children = append(children, element{name: "value", value: item.Value})
	}

	return element{
		name:     strings.ToLower(string(item.Severity)),
		children: children,
	}
}

// writeElement writes an element and its children with indentation.
func writeElement(buffer *bytes.Buffer, e element, indent string, level int) {
	buffer.WriteString(strings.Repeat(indent, level))

	buffer.WriteString("<")
	buffer.WriteString(e.name)
	for _, attr := range e.attributes {
		fmt.Fprintf(buffer, " %s=\"%s\"", attr[0], escapeXML(attr[1]))
	}

	if len(e.children) == 0 && e.value == "" {
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")

	if len(e.children) == 0 {
		buffer.WriteString(escapeXML(e.value))
	} else {
		buffer.WriteString("\n")
		for _, child := range e.children {
			writeElement(buffer, child, indent, level+1)
		}
		buffer.WriteString(strings.Repeat(indent, level))
	}

	buffer.WriteString("</")
	buffer.WriteString(e.name)
	buffer.WriteString(">\n")
}

// escapeXML escapes special characters for XML text and attribute values.
// Characters XML 1.0 does not allow are replaced with U+FFFD.
func escapeXML(s string) string {
	var buffer strings.Builder

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		case '\n':
			buffer.WriteString("&#xA;")
		default:
			if !isXMLChar(r) {
				r = '\uFFFD'
			}
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}

// isXMLChar reports whether r may appear in an XML 1.0 document.
func isXMLChar(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}
