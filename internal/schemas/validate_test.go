package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"properties": {
		"company": {"type": "string"},
		"skills": {"type": "array", "items": {"type": "string"}, "minItems": 1}
	},
	"required": ["company", "skills"]
}`

func TestValidateJSONString_Valid(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"company": "Acme", "skills": ["Go"]}`)
	assert.NoError(t, err)
}

func TestValidateJSONString_MissingRequired(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"company": "Acme"}`)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Errors, 1)
	assert.Contains(t, ve.Errors[0].Message, "skills")
}

func TestValidateJSONString_WrongType(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"company": 42, "skills": ["Go"]}`)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "company", ve.Errors[0].Field)
}

func TestValidateJSONString_MalformedDocument(t *testing.T) {
	err := ValidateJSONString(testSchema, `{not json`)
	require.Error(t, err)

	var le *SchemaLoadError
	assert.ErrorAs(t, err, &le)
}

func TestValidationError_Message(t *testing.T) {
	ve := &ValidationError{Errors: []FieldError{{Field: "company", Message: "is required"}}}
	assert.Contains(t, ve.Error(), "company: is required")
}
