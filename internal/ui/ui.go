// Package ui renders shelf output for the terminal.
//
// Colors follow the NO_COLOR environment variable and the --no-color flag and
// are off when output is not a TTY:
//   - Red: errors
//   - Yellow: warnings
//   - Green: success
//   - Bold: table headers
package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

var (
	Red    = color.New(color.FgRed)
	Yellow = color.New(color.FgYellow)
	Green  = color.New(color.FgGreen)
	Bold   = color.New(color.Bold)
	Dim    = color.New(color.Faint)
)

// InitColors configures global color output based on the noColor flag.
func InitColors(noColor bool) {
	if noColor {
		color.NoColor = true
	}
}

// Success prints a green message with a checkmark prefix.
func Success(w io.Writer, format string, args ...any) {
	_, _ = Green.Fprintf(w, "✓ "+format+"\n", args...)
}

// Warning prints a yellow message with a warning sign prefix.
func Warning(w io.Writer, format string, args ...any) {
	_, _ = Yellow.Fprintf(w, "⚠ "+format+"\n", args...)
}

// Error prints a red message with an X prefix.
func Error(w io.Writer, format string, args ...any) {
	_, _ = Red.Fprintf(w, "✗ "+format+"\n", args...)
}

// Records writes records as an aligned table with a bold header row.
func Records(w io.Writer, schema types.Schema, records []types.Record) error {
	if len(records) == 0 {
		_, err := Dim.Fprintln(w, "No books found.")
		return err
	}

	// Align first, then color the header line, so escape codes do not
	// count toward column widths.
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	headers := make([]string, len(schema.Fields))
	for i, f := range schema.Fields {
		headers[i] = strings.ToUpper(f)
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, rec := range records {
		fmt.Fprintln(tw, strings.Join(rec, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	head, rest, _ := strings.Cut(buf.String(), "\n")
	if _, err := Bold.Fprintln(w, head); err != nil {
		return err
	}
	_, err := io.WriteString(w, rest)
	return err
}

// RecordsJSON writes records as a JSON array of objects keyed by field name.
func RecordsJSON(w io.Writer, schema types.Schema, records []types.Record) error {
	out := make([]map[string]string, len(records))
	for i, rec := range records {
		out[i] = rec.Map(schema)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
