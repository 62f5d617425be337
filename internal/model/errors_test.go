package model

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsValidation(t *testing.T) {
	err := NewValidationError("Missing lease risk or concentration data for tenant %s", "t-9")
	assert.True(t, IsValidation(err))
	assert.Equal(t, "Missing lease risk or concentration data for tenant t-9", err.Error())

	// Wrapping must not hide the type.
	wrapped := eris.Wrap(err, "aggregate property p-1")
	assert.True(t, IsValidation(wrapped))

	assert.False(t, IsValidation(eris.New("boom")))
	assert.False(t, IsValidation(nil))
}

func TestIsDivision(t *testing.T) {
	err := NewDivisionError("total monthly rent is zero")
	assert.True(t, IsDivision(err))
	assert.False(t, IsValidation(err))

	wrapped := eris.Wrap(err, "aggregate property p-1")
	assert.True(t, IsDivision(wrapped))
	assert.False(t, IsDivision(eris.New("boom")))
}
