package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/basestation-calc/internal/calc"
	"github.com/sells-group/basestation-calc/internal/loader"
	"github.com/sells-group/basestation-calc/internal/report"
)

var (
	calcFile   string
	calcFormat string
	calcOutput string
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Run one calculation from a JSON, YAML or XLSX request file",
	Example: `  basestation-calc calc --file request.json
  basestation-calc calc --file request.yaml --format table
  basestation-calc calc --file request.xlsx --format xlsx --output results.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("calc"); err != nil {
			return err
		}

		return runCalc(ctx, newService(cfg), calcFile, calcFormat, calcOutput, cmd.OutOrStdout())
	},
}

func init() {
	calcCmd.Flags().StringVar(&calcFile, "file", "", "request file (.json, .yaml, .yml or .xlsx)")
	calcCmd.Flags().StringVar(&calcFormat, "format", "json", "output format: json, yaml, table or xlsx")
	calcCmd.Flags().StringVar(&calcOutput, "output", "", "write the report to this file instead of stdout")
	_ = calcCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(calcCmd)
}

// runCalc loads the request at path, runs it through svc and writes the
// report in the requested format.
func runCalc(ctx context.Context, svc *calc.Service, path, formatName, output string, stdout io.Writer) error {
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}
	if format == report.FormatXLSX && output == "" {
		return eris.New("calc: --output is required for xlsx format")
	}

	req, err := loader.LoadFile(path)
	if err != nil {
		return err
	}

	resp, err := svc.Calculate(ctx, req)
	if err != nil {
		return eris.Wrapf(err, "calc: %s error", calc.KindOf(err))
	}

	if format == report.FormatXLSX {
		if err := report.WriteXLSX(output, resp); err != nil {
			return err
		}
		zap.L().Info("report written", zap.String("path", output), zap.Int("districts", len(resp.DistrictResults)))
		return nil
	}

	if output == "" {
		return report.Write(stdout, resp, format)
	}

	f, err := os.Create(output)
	if err != nil {
		return eris.Wrap(err, "calc: create output file")
	}
	if err := report.Write(f, resp, format); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrap(err, "calc: close output file")
	}
	zap.L().Info("report written", zap.String("path", output), zap.Int("districts", len(resp.DistrictResults)))
	return nil
}
