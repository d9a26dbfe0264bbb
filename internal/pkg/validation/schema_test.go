package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = MustCompile(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"type", "key"},
	"properties": map[string]interface{}{
		"type": map[string]interface{}{"type": "string", "enum": []interface{}{"industry", "workType"}},
		"key":  map[string]interface{}{"type": "string"},
	},
})

func TestValidateJSON(t *testing.T) {
	assert.NoError(t, testSchema.ValidateJSON([]byte(`{"type":"industry","key":"tech"}`)))

	err := testSchema.ValidateJSON([]byte(`{"type":"planet"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDocument))

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Violations, 2)

	assert.ErrorIs(t, testSchema.ValidateJSON([]byte(`{bad`)), ErrInvalidDocument)
	assert.ErrorIs(t, testSchema.ValidateJSON(nil), ErrInvalidDocument)
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("jane@example.com"))
	assert.False(t, IsEmail("jane@"))
	assert.False(t, IsEmail("jane example@x.com"))
}
