package llm

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaFor reflects v's type into a Schema. Fields are required unless
// tagged omitempty; descriptions come from `jsonschema_description` tags.
func SchemaFor(name, description string, v any) (*Schema, error) {
	r := jsonschema.Reflector{
		Anonymous:      true,
		ExpandedStruct: true,
		DoNotReference: true,
	}

	raw, err := json.Marshal(r.Reflect(v))
	if err != nil {
		return nil, fmt.Errorf("marshal schema %q: %w", name, err)
	}

	var def map[string]any
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("decode schema %q: %w", name, err)
	}
	// Provider structured-output APIs reject meta keywords.
	delete(def, "$schema")
	delete(def, "$id")

	return &Schema{Name: name, Description: description, Definition: def}, nil
}

// MustSchemaFor is SchemaFor for package-level schema variables.
func MustSchemaFor(name, description string, v any) *Schema {
	s, err := SchemaFor(name, description, v)
	if err != nil {
		panic(err)
	}
	return s
}
