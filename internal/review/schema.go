package review

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func payloadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("payload.json", bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("failed to load payload schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("payload.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("failed to compile payload schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// ErrUnresolvedTaskObject is returned when the task object still holds a
// <placeholder>, such as the built-in sample's bucket.
var ErrUnresolvedTaskObject = errors.New("task object is a placeholder")

var placeholderPattern = regexp.MustCompile(`<[^<>]+>`)

// CheckResolved fails if the task object still holds a <placeholder>.
// Reviewers would be shown a broken image.
func (p *Payload) CheckResolved() error {
	if placeholderPattern.MatchString(p.TaskObject) {
		return fmt.Errorf("%w: %s (set loop.sample_task_object or pass a payload file)",
			ErrUnresolvedTaskObject, p.TaskObject)
	}
	return nil
}

// Validate checks the payload shape before it is sent anywhere.
// The review service does not care; this only catches operator typos early.
func (p *Payload) Validate() error {
	if err := p.CheckResolved(); err != nil {
		return err
	}
	content, err := p.InputContent()
	if err != nil {
		return err
	}
	return ValidateInputContent(content)
}

// ValidateInputContent validates a raw JSON input document.
func ValidateInputContent(content string) error {
	schema, err := payloadSchema()
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("payload does not match schema: %w", err)
	}
	return nil
}
