package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "https://ximd.invalid/schema/config-v1.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func configSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// ValidateDocument checks a decoded configuration document (from any of the
// supported formats) against the embedded schema. Unknown keys and wrongly
// typed values are reported as ValidationErrors.
func ValidateDocument(doc any) error {
	schema, err := configSchema()
	if err != nil {
		return err
	}

	// Round-trip through JSON so TOML and YAML values take JSON types.
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}

	err = schema.Validate(instance)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return err
	}

	var errs ValidationErrors
	for _, unit := range verr.BasicOutput().Errors {
		// The first unit only says which schema failed.
		if unit.Error == "" || strings.HasPrefix(unit.Error, "doesn't validate with") {
			continue
		}
		errs = append(errs, ValidationError{
			Field:   pointerToField(unit.InstanceLocation),
			Message: unit.Error,
		})
	}
	if len(errs) == 0 {
		errs = append(errs, ValidationError{Field: "(root)", Message: verr.Message})
	}
	return errs
}

// pointerToField turns "/server/styles/0" into "server.styles[0]".
func pointerToField(ptr string) string {
	var b strings.Builder
	for i, part := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		if part == "" {
			continue
		}
		if part[0] >= '0' && part[0] <= '9' {
			fmt.Fprintf(&b, "[%s]", part)
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	if b.Len() == 0 {
		return "(root)"
	}
	return b.String()
}
