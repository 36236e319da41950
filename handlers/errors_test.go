package handlers

import (
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
)

func TestNewError(t *testing.T) {
	err := huma.Error404NotFound("Person not found", assert.AnError)
	assert.Equal(t, http.StatusNotFound, err.GetStatus())
	assert.Equal(t, "Person not found", err.Error())

	err = huma.NewError(http.StatusUnprocessableEntity, "validation failed")
	assert.Equal(t, http.StatusBadRequest, err.GetStatus())
}
