package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// render writes v as JSON or YAML, or writes header and rows as a table.
func render(w io.Writer, v any, header []string, rows [][]string) error {
	switch output() {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		table := tablewriter.NewWriter(w)
		headerCells := make([]any, len(header))
		for i, h := range header {
			headerCells[i] = h
		}
		table.Header(headerCells...)
		for _, row := range rows {
			if err := table.Append(row); err != nil {
				return err
			}
		}
		return table.Render()
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}
}
