// Package report renders calculation results for the CLI.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/basestation-calc/internal/model"
)

// Format is an output format accepted by Write.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
	FormatXLSX  Format = "xlsx"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatTable, FormatXLSX:
		return f, nil
	default:
		return "", eris.Errorf("report: unknown format %q (want json, yaml, table or xlsx)", s)
	}
}

// Write renders resp to w. XLSX needs a file and is handled by WriteXLSX.
func Write(w io.Writer, resp *model.CalculationResponse, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return eris.Wrap(err, "report: encode json")
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(resp); err != nil {
			return eris.Wrap(err, "report: encode yaml")
		}
		if err := enc.Close(); err != nil {
			return eris.Wrap(err, "report: close yaml encoder")
		}
	case FormatTable:
		return writeTable(w, resp)
	case FormatXLSX:
		return eris.New("report: xlsx output requires an output file")
	default:
		return eris.Errorf("report: unknown format %q", format)
	}
	return nil
}

// writeTable writes an aligned table with one row per district and a total.
func writeTable(out io.Writer, resp *model.CalculationResponse) error {
	p := message.NewPrinter(language.English)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)

	_, _ = fmt.Fprintln(w, "DISTRICT\tN\tHANDOVER_AVG\tADJUSTED\t")
	for _, r := range resp.DistrictResults {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
			r.DistrictID,
			p.Sprintf("%.2f", r.N),
			p.Sprintf("%.2f", r.HandoverAvg),
			yesNo(r.HandoverAdjusted),
		)
	}
	_, _ = fmt.Fprintf(w, "TOTAL\t%s\t\t\t\n", p.Sprintf("%.2f", resp.TotalN))

	if err := w.Flush(); err != nil {
		return eris.Wrap(err, "report: write table")
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
