package manifest

import (
	"embed"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/*.json
var schemaFS embed.FS

const schemaFile = "schema/ossa-0.3.3.schema.json"

// ValidationIssue is a single schema violation.
type ValidationIssue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i ValidationIssue) String() string {
	if i.Path == "" || i.Path == "(root)" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// ValidationResult is the outcome of validating one manifest.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Issues []ValidationIssue `json:"issues,omitempty"`
}

// FirstIssue returns the first violation, or nil when valid.
func (r *ValidationResult) FirstIssue() *ValidationIssue {
	if len(r.Issues) == 0 {
		return nil
	}
	return &r.Issues[0]
}

// Validator checks manifests against the OSSA JSON Schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles the embedded schema.
func NewValidator() (*Validator, error) {
	data, err := schemaFS.ReadFile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("load embedded schema: %w", err)
	}
	return newValidator(gojsonschema.NewBytesLoader(data))
}

// NewValidatorFromPath compiles a schema from an external file, for
// validating against a newer or custom schema revision.
func NewValidatorFromPath(path string) (*Validator, error) {
	return newValidator(gojsonschema.NewReferenceLoader("file://" + path))
}

func newValidator(loader gojsonschema.JSONLoader) (*Validator, error) {
	schema, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate checks a manifest against the schema. The returned error covers
// mechanical failures only; schema violations land in the result.
func (v *Validator) Validate(m *Manifest) (*ValidationResult, error) {
	data, err := sonic.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("serialize manifest: %w", err)
	}

	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validate manifest: %w", err)
	}

	vr := &ValidationResult{Valid: result.Valid()}
	for _, re := range result.Errors() {
		vr.Issues = append(vr.Issues, ValidationIssue{
			Path:    re.Context().String(),
			Message: re.Description(),
		})
	}
	return vr, nil
}

// ValidateFile loads and validates a manifest file.
func (v *Validator) ValidateFile(path string) (*ValidationResult, error) {
	m, err := Load(path)
	if err != nil {
		return nil, err
	}
	return v.Validate(m)
}

// ValidateFile validates a manifest file with the embedded schema, or with
// the schema at schemaPath when non-empty.
func ValidateFile(path, schemaPath string) (*ValidationResult, error) {
	var (
		v   *Validator
		err error
	)
	if schemaPath != "" {
		v, err = NewValidatorFromPath(schemaPath)
	} else {
		v, err = NewValidator()
	}
	if err != nil {
		return nil, err
	}
	return v.ValidateFile(path)
}
