package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateResume(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		wantError bool
	}{
		{
			name: "valid resume",
			yaml: `
personal_information:
  name: Ada
  email: ada@example.com
  phone: 5551234
experience_details:
  - position: Backend Engineer
    company: Initech
    skills_acquired: [Go, SQL]
legal_authorization:
  us_work_authorization: true
`,
			wantError: false,
		},
		{
			name:      "missing personal information",
			yaml:      "projects:\n  - name: kv-store\n",
			wantError: true,
		},
		{
			name: "non-boolean authorization",
			yaml: `
personal_information: {name: Ada, email: ada@example.com}
legal_authorization:
  us_work_authorization: maybe
`,
			wantError: true,
		},
		{
			name:      "empty document",
			yaml:      "",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResume([]byte(tt.yaml))
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			validationErr, ok := err.(*ValidationError)
			require.True(t, ok, "error should be ValidationError, got %T: %v", err, err)
			assert.Greater(t, len(validationErr.Errors), 0)
		})
	}
}

func TestValidateConfig(t *testing.T) {
	valid := `
experience_level: {entry: true}
date: {week: true}
positions: [Backend Engineer]
locations: [Berlin]
max_applications: 10
`
	assert.NoError(t, ValidateConfig([]byte(valid)))

	err := ValidateConfig([]byte("positions: []\nlocations: [Berlin]\n"))
	require.Error(t, err)
	_, ok := err.(*ValidationError)
	assert.True(t, ok)

	err = ValidateConfig([]byte("positions: [a]\nlocations: [b]\nwork_types: {remote: yes please}\n"))
	assert.Error(t, err)
}

func TestValidateYAML_MalformedDocument(t *testing.T) {
	err := ValidateResume([]byte("personal_information: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML document")
}

func TestValidateYAML_UnknownSchema(t *testing.T) {
	err := ValidateYAML("missing.schema.json", []byte("{}"))
	require.Error(t, err)
	_, ok := err.(*SchemaLoadError)
	assert.True(t, ok)
}

func TestValidateJSONString_Valid(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"}
		}
	}`
	jsonContent := `{"name": "test"}`

	err := ValidateJSONString(schemaContent, jsonContent)
	assert.NoError(t, err)
}

func TestValidateJSONString_Invalid(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"}
		}
	}`
	jsonContent := `{"age": 30}`

	err := ValidateJSONString(schemaContent, jsonContent)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "age", Message: "must be a number"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "name")
	assert.Contains(t, errorMsg, "age")
}

func TestValidateJSONString_NestedFieldPath(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["person"],
		"properties": {
			"person": {
				"type": "object",
				"required": ["name"],
				"properties": {
					"name": {"type": "string"}
				}
			}
		}
	}`

	err := ValidateJSONString(schemaContent, `{"person": {}}`)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	require.NotEmpty(t, validationErr.Errors)
	assert.Contains(t, validationErr.Errors[0].Field, "person")
}
