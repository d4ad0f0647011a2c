package checklist

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed checklist.schema.json
var schemaData []byte

var (
	checklistSchema *jsonschema.Schema
	compileOnce     sync.Once
	compileErr      error
)

// compileSchema compiles the embedded schema once.
func compileSchema() error {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()

		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaData))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal checklist schema: %w", err)
			return
		}
		if err := compiler.AddResource("checklist.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("add checklist schema resource: %w", err)
			return
		}
		checklistSchema, err = compiler.Compile("checklist.schema.json")
		if err != nil {
			compileErr = fmt.Errorf("compile checklist schema: %w", err)
			return
		}
	})
	return compileErr
}

// validate checks a JSON encoded checklist against the schema
func validate(data []byte) error {
	if err := compileSchema(); err != nil {
		return err
	}
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := checklistSchema.Validate(v); err != nil {
		return fmt.Errorf("checklist validation failed: %w", err)
	}
	return nil
}
