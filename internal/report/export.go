package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
)

// Download file names.
const (
	AssessmentPDFName  = "knee_report.pdf"
	AssessmentJSONName = "knee_report.json"
	PredictionPDFName  = "prediction_report.pdf"
	PredictionJSONName = "predict_params.json"
)

// WritePDF lays text out on A4 pages, one multi-line cell per input line.
// Text is cleaned before layout.
func WritePDF(w io.Writer, text string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Knee OA Management Platform report", true)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, line := range strings.Split(CleanText(text), "\n") {
		pdf.MultiCell(0, 10, tr(line), "", "", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// PDF returns the rendered document bytes.
func PDF(text string) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, text); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSON writes v as indented JSON. Raw JSON is re-indented as is.
func WriteJSON(w io.Writer, v any) error {
	var data []byte
	var err error
	if raw, ok := v.(json.RawMessage); ok {
		var buf bytes.Buffer
		if err = json.Indent(&buf, raw, "", "  "); err != nil {
			return fmt.Errorf("indent json: %w", err)
		}
		data = buf.Bytes()
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
