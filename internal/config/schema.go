package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	santhosh "github.com/santhosh-tekuri/jsonschema/v5"
)

// GenerateSchema reflects the JSON Schema of the configuration file.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		ExpandedStruct:             true,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
		Anonymous:                  true,
		// Use YAML field names for property names
		FieldNameTag: "yaml",
	}

	schema := r.Reflect(&Config{})
	schema.Title = "tiler configuration"
	schema.Description = "Key bindings, groups, layouts and screen handling for the tiler window manager."

	return json.MarshalIndent(schema, "", "  ")
}

// SchemaValidator validates configuration structs against the reflected
// schema.
type SchemaValidator struct {
	schema *santhosh.Schema
}

var (
	validatorOnce sync.Once
	validator     *SchemaValidator
	validatorErr  error
)

func defaultValidator() (*SchemaValidator, error) {
	validatorOnce.Do(func() {
		validator, validatorErr = NewSchemaValidator()
	})
	return validator, validatorErr
}

func NewSchemaValidator() (*SchemaValidator, error) {
	data, err := GenerateSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to generate schema: %w", err)
	}
	compiler := santhosh.NewCompiler()
	if err := compiler.AddResource("tiler.json", bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	schema, err := compiler.Compile("tiler.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &SchemaValidator{schema: schema}, nil
}

// Validate validates configData, any struct that marshals to JSON, against
// the schema.
func (v *SchemaValidator) Validate(configData interface{}) error {
	jsonData, err := json.Marshal(configData)
	if err != nil {
		return fmt.Errorf("failed to marshal config to JSON for validation: %w", err)
	}

	var dataToValidate interface{}
	if err := json.Unmarshal(jsonData, &dataToValidate); err != nil {
		return fmt.Errorf("failed to unmarshal JSON for validation: %w", err)
	}

	if err := v.schema.Validate(dataToValidate); err != nil {
		if validationErr, ok := err.(*santhosh.ValidationError); ok {
			var errorMessages []string
			collectErrors(validationErr, &errorMessages)
			return fmt.Errorf("schema validation failed:\n%s", strings.Join(errorMessages, "\n"))
		}
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func collectErrors(err *santhosh.ValidationError, messages *[]string) {
	if err.InstanceLocation != "" {
		*messages = append(*messages, fmt.Sprintf("- %s: %s", err.InstanceLocation, err.Message))
	}
	for _, cause := range err.Causes {
		collectErrors(cause, messages)
	}
}
