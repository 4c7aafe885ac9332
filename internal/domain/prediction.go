package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// KeyFactorsKey holds the SHAP explanation list in the parameter document.
const KeyFactorsKey = "key_factors.right_knee_symptoms_year2"

// NotAvailable is displayed for parameters absent from the document.
const NotAvailable = "N/A"

// KeyFactor is one SHAP contribution to the predicted symptom score.
type KeyFactor struct {
	Feature string          `json:"feature"`
	Impact  json.RawMessage `json:"impact,omitempty"`
	Effect  string          `json:"effect"`
}

// ImpactText renders the impact value the way it appears in the document.
func (k KeyFactor) ImpactText() string {
	raw := bytes.TrimSpace(k.Impact)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return NotAvailable
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// PredictionParams is the flat, dotted-key parameter document produced by
// the assessment agent and consumed by the prediction page.
type PredictionParams struct {
	Ordered[json.RawMessage]
}

// UnmarshalJSON decodes the underlying ordered object.
func (p *PredictionParams) UnmarshalJSON(data []byte) error {
	return p.Ordered.UnmarshalJSON(data)
}

// MarshalJSON encodes the parameters in document order.
func (p PredictionParams) MarshalJSON() ([]byte, error) {
	return p.Ordered.MarshalJSON()
}

// IsScalar reports whether key holds a string, number or boolean.
func (p PredictionParams) IsScalar(key string) bool {
	raw, ok := p.Get(key)
	if !ok {
		return false
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch raw[0] {
	case '{', '[':
		return false
	case 'n':
		return false
	}
	return true
}

// Display returns the value for key as plain text: strings unquoted,
// numbers as written in the document, NotAvailable when missing.
func (p PredictionParams) Display(key string) string {
	raw, ok := p.Get(key)
	if !ok {
		return NotAvailable
	}
	raw = bytes.TrimSpace(raw)
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// Pretty returns an indented JSON rendering of the value stored under key.
func (p PredictionParams) Pretty(key string) string {
	raw, ok := p.Get(key)
	if !ok {
		return NotAvailable
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return strings.TrimSpace(string(raw))
	}
	return buf.String()
}

// Items splits a list value into its indented elements.
// It returns nil when key is missing or not a list.
func (p PredictionParams) Items(key string) []string {
	raw, ok := p.Get(key)
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var buf bytes.Buffer
		if err := json.Indent(&buf, item, "", "  "); err != nil {
			out = append(out, string(item))
			continue
		}
		out = append(out, buf.String())
	}
	return out
}

// KeyFactors decodes the SHAP factor list. A missing key yields no factors.
func (p PredictionParams) KeyFactors() ([]KeyFactor, error) {
	raw, ok := p.Get(KeyFactorsKey)
	if !ok {
		return nil, nil
	}
	var factors []KeyFactor
	if err := json.Unmarshal(raw, &factors); err != nil {
		return nil, fmt.Errorf("decode %s: %w", KeyFactorsKey, err)
	}
	return factors, nil
}
