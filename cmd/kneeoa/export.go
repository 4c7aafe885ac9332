package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ashureev/kneeoa/internal/content"
	"github.com/ashureev/kneeoa/internal/report"
)

var (
	exportDir    string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:       "export [assessment|prediction|all]",
	Short:     "Write the downloadable reports to disk",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"assessment", "prediction", "all"},
	RunE: func(cmd *cobra.Command, args []string) error {
		which := "all"
		if len(args) == 1 {
			which = args[0]
		}
		store, err := openContent()
		if err != nil {
			return err
		}
		written, err := writeExports(store, which, exportFormat, exportDir)
		for _, path := range written {
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		return err
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", ".", "Output directory")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "both", "pdf, json or both")
}

type exportJob struct {
	report string
	format string
	name   string
	build  func(*content.Store) ([]byte, error)
}

var exportJobs = []exportJob{
	{"assessment", "pdf", report.AssessmentPDFName, assessmentPDF},
	{"assessment", "json", report.AssessmentJSONName, assessmentJSON},
	{"prediction", "pdf", report.PredictionPDFName, predictionPDF},
	{"prediction", "json", report.PredictionJSONName, predictionJSON},
}

// writeExports renders the selected reports into dir and returns the paths
// written. It stops at the first failure.
func writeExports(store *content.Store, which, format, dir string) ([]string, error) {
	switch format {
	case "pdf", "json", "both":
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var written []string
	for _, job := range exportJobs {
		if which != "all" && which != job.report {
			continue
		}
		if format != "both" && format != job.format {
			continue
		}
		data, err := job.build(store)
		if err != nil {
			return written, fmt.Errorf("%s %s: %w", job.report, job.format, err)
		}
		path := filepath.Join(dir, job.name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func assessmentPDF(store *content.Store) ([]byte, error) {
	tmpl, err := store.ReportTemplate()
	if err != nil {
		return nil, err
	}
	return report.PDF(report.TemplateText(tmpl))
}

func assessmentJSON(store *content.Store) ([]byte, error) {
	raw, err := store.CustomPatientReport()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := report.WriteJSON(&buf, raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func predictionPDF(store *content.Store) ([]byte, error) {
	params, err := store.PredictionParams()
	if err != nil {
		return nil, err
	}
	text, err := report.PredictionText(params)
	if err != nil {
		return nil, err
	}
	return report.PDF(text)
}

// predictionJSON copies the parameter document byte for byte.
func predictionJSON(store *content.Store) ([]byte, error) {
	return store.Raw(content.PredictParams)
}
