package services

import (
	"testing"
	"time"

	"bilca_backend/internal/auth"
	"bilca_backend/internal/models"
	"bilca_backend/pkg/apperrors"
	"bilca_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewTokenValidate_WindowBoundary(t *testing.T) {
	f := newFixture(t)
	client := helpers.CreateClient(t, f.db)
	worker := helpers.CreateWorker(t, f.db)
	hire := helpers.CreateHire(t, f.db, client, worker, helpers.Completed(baseTime))

	f.clock.Set(baseTime.Add(9 * 24 * time.Hour))
	token, err := f.tokens.Issue(hire.ID, client.ID)
	require.NoError(t, err)

	f.clock.Set(baseTime.Add(10 * 24 * time.Hour))
	validated, err := f.tokens.Validate(f.db, token)
	require.NoError(t, err)
	assert.Equal(t, hire.ID, validated.Hire.ID)
	assert.True(t, validated.Summary.Valid)
	assert.Equal(t, worker.Name, validated.Summary.Hire.Worker.Name)
	assert.Equal(t, "Plumbing", validated.Summary.Hire.Service)

	f.clock.Set(baseTime.Add(10*24*time.Hour + time.Second))
	_, err = f.tokens.Validate(f.db, token)
	assert.ErrorIs(t, err, apperrors.ErrReviewWindowClosed)
}

func TestReviewTokenValidate_Rejections(t *testing.T) {
	f := newFixture(t)
	client := helpers.CreateClient(t, f.db)
	otherClient := helpers.CreateClient(t, f.db)
	worker := helpers.CreateWorker(t, f.db)

	completed := helpers.CreateHire(t, f.db, client, worker, helpers.Completed(baseTime))
	accepted := helpers.CreateHire(t, f.db, client, worker, helpers.Accepted)
	rating := 4
	reviewedAt := baseTime.Add(time.Hour)
	reviewed := helpers.CreateHire(t, f.db, client, worker, helpers.Completed(baseTime), func(h *models.Hire) {
		h.ReviewRating = &rating
		h.ReviewedAt = &reviewedAt
	})

	issue := func(hireID, clientID string) string {
		token, err := f.tokens.Issue(hireID, clientID)
		require.NoError(t, err)
		return token
	}

	cases := []struct {
		name  string
		token string
		want  *apperrors.AppError
	}{
		{"empty", "", apperrors.ErrInvalidReviewToken},
		{"garbage", "not-a-jwt", apperrors.ErrInvalidReviewToken},
		{"foreign signature", foreignToken(t, completed.ID, client.ID), apperrors.ErrInvalidReviewToken},
		{"unknown hire", issue("missing", client.ID), apperrors.ErrInvalidReviewToken},
		{"client mismatch", issue(completed.ID, otherClient.ID), apperrors.ErrInvalidReviewToken},
		{"already reviewed", issue(reviewed.ID, client.ID), apperrors.ErrAlreadyReviewed},
		{"not completed", issue(accepted.ID, client.ID), apperrors.ErrHireNotCompleted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.tokens.Validate(f.db, tc.token)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestReviewTokenValidate_Expired(t *testing.T) {
	f := newFixture(t)
	client := helpers.CreateClient(t, f.db)
	worker := helpers.CreateWorker(t, f.db)
	hire := helpers.CreateHire(t, f.db, client, worker, helpers.Completed(baseTime))

	token, err := f.tokens.Issue(hire.ID, client.ID)
	require.NoError(t, err)

	f.clock.Advance(8 * 24 * time.Hour)
	_, err = f.tokens.Validate(f.db, token)
	assert.ErrorIs(t, err, apperrors.ErrReviewTokenExpired)
}

func TestReviewTokenValidate_DefaultServiceLabel(t *testing.T) {
	f := newFixture(t)
	client := helpers.CreateClient(t, f.db)
	worker := helpers.CreateWorker(t, f.db)
	hire := helpers.CreateHire(t, f.db, client, worker, helpers.Completed(baseTime), func(h *models.Hire) {
		h.Service = ""
	})

	token, err := f.tokens.Issue(hire.ID, client.ID)
	require.NoError(t, err)

	validated, err := f.tokens.Validate(f.db, token)
	require.NoError(t, err)
	assert.Equal(t, DefaultServiceLabel, validated.Summary.Hire.Service)
}

func foreignToken(t *testing.T, hireID, clientID string) string {
	t.Helper()
	token, err := auth.NewReviewTokenSigner("another-secret", time.Hour).Issue(hireID, clientID)
	require.NoError(t, err)
	return token
}
