package validator

import (
	"strings"
	"testing"

	"bilca_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_CreateHireRequest(t *testing.T) {
	v := New()

	negative := -5.0
	err := v.Validate(&dto.CreateHireRequest{Budget: &negative})
	require.Error(t, err)

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "This field is required", vErr.Errors["worker_id"])
	assert.Equal(t, "This field is required", vErr.Errors["service"])
	assert.Equal(t, "This field is required", vErr.Errors["description"])
	assert.Equal(t, "Must be greater than or equal to 0", vErr.Errors["budget"])
}

func TestValidate_HireStatus(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&dto.UpdateHireStatusRequest{Status: "accepted"}))

	err := v.Validate(&dto.UpdateHireStatusRequest{Status: "completed"})
	require.Error(t, err)
	assert.Contains(t, err.(*ValidationError).Errors["status"], "Must be one of")

	err = v.Validate(&dto.UpdateHireStatusRequest{Status: "bogus"})
	require.Error(t, err)
	assert.Equal(t, "Must be a valid hire status", err.(*ValidationError).Errors["status"])
}

func TestValidate_SubmitReviewRequest(t *testing.T) {
	v := New()

	err := v.Validate(&dto.SubmitReviewRequest{Token: "t", Rating: 6})
	require.Error(t, err)
	assert.Equal(t, "Must be at most 5", err.(*ValidationError).Errors["rating"])

	assert.NoError(t, v.Validate(&dto.SubmitReviewRequest{Token: "t", Rating: 5, Comment: "great"}))

	// Length is enforced on the trimmed comment by the review service.
	padded := "  " + strings.Repeat("a", 500) + "  "
	assert.NoError(t, v.Validate(&dto.SubmitReviewRequest{Token: "t", Rating: 5, Comment: padded}))
}
