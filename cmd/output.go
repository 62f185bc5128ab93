package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// view is a command result: data for json and yaml output, rows for tables.
type view struct {
	data    any
	columns []string
	rows    [][]string
	footer  string
}

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	idColor     = color.New(color.FgYellow)
	dimColor    = color.New(color.Faint)
)

// render writes v in the requested format. A non-empty path selects part of
// the JSON document first.
func render(w io.Writer, format, path string, v view) error {
	if path != "" {
		return renderPath(w, format, path, v.data)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v.data)
	case "yaml":
		return renderYAML(w, v.data)
	default:
		renderTable(w, v)
		return nil
	}
}

func renderPath(w io.Writer, format, path string, data any) error {
	doc, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	result := gjson.GetBytes(doc, path)
	if !result.Exists() {
		return fmt.Errorf("path '%s' not found in result", path)
	}

	switch {
	case format == "yaml":
		return renderYAML(w, result.Value())
	case result.Type == gjson.String:
		_, err = fmt.Fprintln(w, result.String())
	default:
		_, err = fmt.Fprintln(w, result.Raw)
	}
	return err
}

// renderYAML goes through JSON so that keys keep their wire names.
func renderYAML(w io.Writer, data any) error {
	doc, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	var generic any
	if err := json.Unmarshal(doc, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(generic)
}

func renderTable(w io.Writer, v view) {
	if len(v.rows) == 0 {
		fmt.Fprintln(w, dimColor.Sprint("No results."))
		return
	}

	widths := make([]int, len(v.columns))
	for i, c := range v.columns {
		widths[i] = len(c)
	}
	for _, row := range v.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	cells := make([]string, len(v.columns))
	for i, c := range v.columns {
		cells[i] = headerColor.Sprint(pad(c, widths[i], i == len(v.columns)-1))
	}
	fmt.Fprintln(w, strings.Join(cells, "  "))

	for _, row := range v.rows {
		for i, cell := range row {
			cell = pad(cell, widths[i], i == len(row)-1)
			if i == 0 {
				cell = idColor.Sprint(cell)
			}
			cells[i] = cell
		}
		fmt.Fprintln(w, strings.Join(cells[:len(row)], "  "))
	}

	if v.footer != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, dimColor.Sprint(v.footer))
	}
}

func pad(s string, width int, last bool) string {
	if last {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// truncate shortens long names for table output
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func count(n int64) string {
	return humanize.Comma(n)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	if strings.HasSuffix(word, "y") {
		return fmt.Sprintf("%s %sies", humanize.Comma(int64(n)), strings.TrimSuffix(word, "y"))
	}
	return fmt.Sprintf("%s %ss", humanize.Comma(int64(n)), word)
}

func standardLabel(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

// output renders v for cmd using the configured format
func output(cmd *cobra.Command, v view) error {
	return render(cmd.OutOrStdout(), cfg.Output.Format, jsonPath, v)
}

// listView tabulates the array at key in data, one column per field path
func listView(data any, key string, columns, fields []string) (view, error) {
	v := view{data: data, columns: columns}

	doc, err := json.Marshal(data)
	if err != nil {
		return v, fmt.Errorf("failed to encode result: %w", err)
	}
	list := gjson.GetBytes(doc, key)
	if !list.IsArray() {
		return v, nil
	}

	for _, item := range list.Array() {
		row := make([]string, len(fields))
		for i, field := range fields {
			value := item.Get(field)
			switch {
			case !value.Exists() || value.Type == gjson.Null:
				row[i] = "-"
			case value.Type == gjson.Number && strings.HasSuffix(field, "_count"):
				row[i] = count(value.Int())
			default:
				row[i] = value.String()
			}
		}
		v.rows = append(v.rows, row)
	}
	return v, nil
}
