package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiledSchemas holds *jsonschema.Schema values keyed by Schema.Name.
// Names are unique per Go type, so a name always maps to one definition.
var compiledSchemas sync.Map

// validateResponse checks raw model output against schema. A nil schema
// accepts anything. Failures are *ErrInvalidResponse carrying the content.
func validateResponse(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}

	invalid := func(err error) error {
		return &ErrInvalidResponse{Content: raw, Err: err}
	}

	// UnmarshalJSON keeps numbers as json.Number, which the validator
	// needs for exact integer checks.
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return invalid(fmt.Errorf("invalid JSON: %w", err))
	}

	compiled, err := compiledSchema(schema)
	if err != nil {
		return invalid(fmt.Errorf("compile schema %q: %w", schema.Name, err))
	}
	if err := compiled.Validate(doc); err != nil {
		return invalid(fmt.Errorf("does not match schema %q: %w", schema.Name, err))
	}
	return nil
}

func compiledSchema(schema *Schema) (*jsonschema.Schema, error) {
	if c, ok := compiledSchemas.Load(schema.Name); ok {
		return c.(*jsonschema.Schema), nil
	}

	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal definition: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("decode definition: %w", err)
	}

	url := "schema://olytutor/" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, err
	}

	actual, _ := compiledSchemas.LoadOrStore(schema.Name, compiled)
	return actual.(*jsonschema.Schema), nil
}
