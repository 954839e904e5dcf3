package genai

import (
	"embed"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	compiledSchemas = make(map[string]*gojsonschema.Schema)
	schemaMu        sync.Mutex
)

// ValidateOutput checks a model's JSON output against one of the embedded
// schemas (by file name, e.g. "findings.json"). A validation failure is an
// ErrModelContract: the model broke the response contract, not the client.
func ValidateOutput(schemaName string, doc []byte) error {
	schema, err := loadSchema(schemaName)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrModelContract, err)
	}
	if !result.Valid() {
		first := ""
		if errs := result.Errors(); len(errs) > 0 {
			first = errs[0].String()
		}
		return fmt.Errorf("%w: %s", ErrModelContract, first)
	}
	return nil
}

func loadSchema(name string) (*gojsonschema.Schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	if s, ok := compiledSchemas[name]; ok {
		return s, nil
	}

	raw, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, fmt.Errorf("unknown output schema %q: %w", name, err)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to compile output schema %q: %w", name, err)
	}

	compiledSchemas[name] = schema
	return schema, nil
}
