package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "yaml", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be one of %s", format, strings.Join(validFormats, ", "))
}

// writeResult renders result to w in format.
func writeResult(w io.Writer, format string, result CLIResult) error {
	switch format {
	case "text":
		return writeResultText(w, result)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetHeaderLine(false)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func formatSymbolsText(w io.Writer, syms []CLISymbol) {
	table := newTable(w, "Name", "Role", "Type", "Origin")
	for _, s := range syms {
		table.Append([]string{s.Name, s.Role, s.Type, s.Origin})
	}
	table.Render()
}

func formatAnalysisText(w io.Writer, a CLIAnalysis) {
	fmt.Fprintf(w, "Root: %s\n", a.Root)
	fmt.Fprintf(w, "Order: %s\n\n", strings.Join(a.Order, " "))
	formatSymbolsText(w, a.Symbols)
}

func formatPathsText(w io.Writer, paths []CLIPath) {
	table := newTable(w, "Path", "Value")
	for _, p := range paths {
		table.Append([]string{p.Path, p.Value})
	}
	table.Render()
}

func formatModulesText(w io.Writer, mods []CLIModule) {
	for _, m := range mods {
		fmt.Fprintln(w, m.ID)
	}
}

func formatDiagnosticsText(w io.Writer, diags []CLIDiagnostic) {
	table := newTable(w, "Module", "Path", "Error")
	for _, d := range diags {
		table.Append([]string{d.Module, d.Path, d.Error})
	}
	table.Render()
}

// writeResultText dispatches to the text formatter for the result type.
func writeResultText(w io.Writer, result CLIResult) error {
	if result.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", result.Error)
		return nil
	}

	switch v := result.Results.(type) {
	case []CLIAnalysis:
		for i, a := range v {
			if i > 0 {
				fmt.Fprintln(w)
			}
			formatAnalysisText(w, a)
		}
	case []CLISymbol:
		formatSymbolsText(w, v)
	case CLISymbol:
		formatSymbolsText(w, []CLISymbol{v})
		if len(v.Attrs) > 0 {
			fmt.Fprintf(w, "\nAttrs: %s\n", strings.Join(v.Attrs, ", "))
		}
	case []CLIPath:
		formatPathsText(w, v)
	case []CLIModule:
		formatModulesText(w, v)
	case []CLIDiagnostic:
		formatDiagnosticsText(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}

	if result.TotalCount != nil {
		fmt.Fprintf(w, "\n%d total\n", *result.TotalCount)
	}
	return nil
}
