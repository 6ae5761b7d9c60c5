package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	sentinel := errors.New("input required")
	err := NewValidationError(sentinel, FieldError{Field: "mobileNumber", Error: "this field is required"})

	assert.Equal(t, "input required", err.Error())
	assert.Equal(t, sentinel, errors.Cause(err))
	assert.True(t, errors.Is(errors.Wrap(err, "validating"), sentinel))

	var verr *ValidationError
	if assert.True(t, errors.As(err, &verr)) {
		assert.Equal(t, map[string]string{"mobileNumber": "this field is required"}, verr.FieldMap())
	}
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "KG2024001", CleanString("  KG2024001\t"))
	assert.Equal(t, "kg2024001", CleanString(" KG2024001 ", true))
}
