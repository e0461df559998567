package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/1CEs/xams-sub001/pkg/errors"
)

type renameRequest struct {
	Name string   `validate:"required,max=200"`
	Path []string `validate:"required,min=1,dive,bankid"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(renameRequest{Name: "Quiz", Path: []string{"A", "B"}}))

	err := ValidateStruct(renameRequest{Path: []string{"A"}})
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Contains(t, err.Error(), "name is required")

	err = ValidateStruct(renameRequest{Name: "Quiz", Path: []string{"A,B"}})
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Contains(t, err.Error(), "without commas")
}
