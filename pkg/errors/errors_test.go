package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedError(t *testing.T) {
	typed := Clone(ErrValidation, "partscode and supplier are required fields")
	wrapped := fmt.Errorf("save: %w", typed)

	got := FromError(wrapped)
	assert.Equal(t, http.StatusBadRequest, got.Status)
	assert.Equal(t, "partscode and supplier are required fields", got.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	got := FromError(stderrors.New("boom"))
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
}

func TestUpstreamSurfacesMessage(t *testing.T) {
	cause := stderrors.New(`duplicate key value violates unique constraint "qc_records_pkey"`)
	got := Upstream(cause, "failed to save QC record")
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.Equal(t, cause.Error(), got.Details)
	assert.ErrorIs(t, got, cause)
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrForbidden, "Only admins can view statistics")
	assert.Equal(t, "forbidden", ErrForbidden.Message)
	assert.Equal(t, "Only admins can view statistics", clone.Message)
	assert.Nil(t, Clone(nil, "x"))
}
