// Package review defines the payload handed to human reviewers.
//
// The payload is operator-defined: a pointer to the task object (usually an
// image in object storage) plus named fields carrying the extracted value and
// the extractor's confidence. It is built once and passed through verbatim.
package review

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Payload is the input content of a review task.
type Payload struct {
	TaskObject string           `json:"taskObject" yaml:"taskObject"`
	Fields     map[string]Field `json:"fields" yaml:"fields"`
}

// Field is one extracted value and its confidence score.
type Field struct {
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Value      string  `json:"value" yaml:"value"`
}

// SamplePayload returns the built-in payload used to render and smoke-test
// a template when the operator does not supply one. Its task object is a
// placeholder the caller must replace with a real document.
func SamplePayload() *Payload {
	return &Payload{
		TaskObject: "s3://<bucket>/samples/document.png",
		Fields: map[string]Field{
			"invoice_number": {Confidence: 62.5, Value: "INV-1042"},
			"invoice_date":   {Confidence: 91.0, Value: "2024-03-18"},
			"total_amount":   {Confidence: 48.3, Value: "1,284.00"},
			"vendor_name":    {Confidence: 97.2, Value: "Acme Supplies"},
		},
	}
}

// LoadPayload reads a payload from a JSON or YAML file.
// The format is picked by extension; anything other than .yaml/.yml is JSON.
func LoadPayload(path string) (*Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	var p Payload
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to parse payload yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to parse payload json: %w", err)
		}
	}
	return &p, nil
}

// InputContent returns the JSON document sent to the review service.
func (p *Payload) InputContent() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}
	return string(data), nil
}

// FieldNames returns the field names in sorted order.
func (p *Payload) FieldNames() []string {
	names := make([]string, 0, len(p.Fields))
	for name := range p.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LowConfidence returns the sorted names of fields scored below threshold.
func (p *Payload) LowConfidence(threshold float64) []string {
	var names []string
	for _, name := range p.FieldNames() {
		if p.Fields[name].Confidence < threshold {
			names = append(names, name)
		}
	}
	return names
}

// OnlyFields returns a copy of the payload restricted to the named fields.
// Unknown names are ignored.
func (p *Payload) OnlyFields(names []string) *Payload {
	out := &Payload{
		TaskObject: p.TaskObject,
		Fields:     make(map[string]Field, len(names)),
	}
	for _, name := range names {
		if f, ok := p.Fields[name]; ok {
			out.Fields[name] = f
		}
	}
	return out
}
