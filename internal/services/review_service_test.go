package services

import (
	"strings"
	"sync"
	"testing"
	"time"

	"bilca_backend/internal/models"
	"bilca_backend/internal/services/dto"
	"bilca_backend/pkg/apperrors"
	"bilca_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitReview_RecordsReviewAndRating(t *testing.T) {
	f := newFixture(t)
	client := helpers.CreateClient(t, f.db)
	worker := helpers.CreateWorker(t, f.db)
	hire := helpers.CreateHire(t, f.db, client, worker, helpers.Completed(baseTime))

	token, err := f.tokens.Issue(hire.ID, client.ID)
	require.NoError(t, err)

	f.clock.Advance(24 * time.Hour)
	resp, err := f.reviews.SubmitReview(f.db, &dto.SubmitReviewRequest{
		Token:   token,
		Rating:  5,
		Comment: "  Great work  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Thank you for your review!", resp.Message)
	assert.Equal(t, 5, resp.Review.Rating)
	assert.Equal(t, "Great work", resp.Review.Comment)

	reloaded := helpers.ReloadHire(t, f.db, hire.ID)
	require.True(t, reloaded.IsReviewed())
	assert.Equal(t, 5, *reloaded.ReviewRating)
	assert.True(t, reloaded.ReviewedAt.Equal(baseTime.Add(24*time.Hour)))

	stored, err := f.reviewRepo.FindByHire(f.db, hire.ID)
	require.NoError(t, err)
	assert.Equal(t, worker.ID, stored.WorkerID)
	assert.Equal(t, client.ID, stored.UserID)

	updated := helpers.ReloadUser(t, f.db, worker.ID)
	assert.Equal(t, 5.0, updated.Rating)
	assert.Equal(t, 1, updated.TotalJobs)
}

func TestSubmitReview_TokenIsSingleUse(t *testing.T) {
	f := newFixture(t)
	client := helpers.CreateClient(t, f.db)
	worker := helpers.CreateWorker(t, f.db)
	hire := helpers.CreateHire(t, f.db, client, worker, helpers.Completed(baseTime))

	first, err := f.tokens.Issue(hire.ID, client.ID)
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	second, err := f.tokens.Issue(hire.ID, client.ID)
	require.NoError(t, err)

	_, err = f.reviews.SubmitReview(f.db, &dto.SubmitReviewRequest{Token: first, Rating: 4})
	require.NoError(t, err)

	_, err = f.reviews.SubmitReview(f.db, &dto.SubmitReviewRequest{Token: first, Rating: 1})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyReviewed)

	_, err = f.reviews.SubmitReview(f.db, &dto.SubmitReviewRequest{Token: second, Rating: 1})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyReviewed)

	_, err = f.reviews.ValidateToken(f.db, second)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyReviewed)

	assert.Equal(t, 4, *helpers.ReloadHire(t, f.db, hire.ID).ReviewRating)
	assert.Equal(t, 4.0, helpers.ReloadUser(t, f.db, worker.ID).Rating)
}

func TestSubmitReview_InvalidInputLeavesHireUntouched(t *testing.T) {
	f := newFixture(t)
	client := helpers.CreateClient(t, f.db)
	worker := helpers.CreateWorker(t, f.db)
	hire := helpers.CreateHire(t, f.db, client, worker, helpers.Completed(baseTime))
	token, err := f.tokens.Issue(hire.ID, client.ID)
	require.NoError(t, err)

	cases := []struct {
		name  string
		req   dto.SubmitReviewRequest
		field string
	}{
		{"rating too low", dto.SubmitReviewRequest{Token: token, Rating: 0}, "rating"},
		{"rating too high", dto.SubmitReviewRequest{Token: token, Rating: 6}, "rating"},
		{"comment too long", dto.SubmitReviewRequest{Token: token, Rating: 3, Comment: strings.Repeat("a", 501)}, "comment"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.reviews.SubmitReview(f.db, &tc.req)
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
			assert.Contains(t, appErr.Details, tc.field)
		})
	}

	assert.False(t, helpers.ReloadHire(t, f.db, hire.ID).IsReviewed())

	_, err = f.reviews.SubmitReview(f.db, &dto.SubmitReviewRequest{Token: token, Rating: 3, Comment: strings.Repeat("é", 500)})
	assert.NoError(t, err)
}

func TestSubmitReview_WindowClosed(t *testing.T) {
	f := newFixture(t)
	client := helpers.CreateClient(t, f.db)
	worker := helpers.CreateWorker(t, f.db)
	hire := helpers.CreateHire(t, f.db, client, worker, helpers.Completed(baseTime))

	f.clock.Set(baseTime.Add(10 * 24 * time.Hour))
	token, err := f.tokens.Issue(hire.ID, client.ID)
	require.NoError(t, err)

	f.clock.Advance(time.Second)
	_, err = f.reviews.SubmitReview(f.db, &dto.SubmitReviewRequest{Token: token, Rating: 5})
	assert.ErrorIs(t, err, apperrors.ErrReviewWindowClosed)
	assert.False(t, helpers.ReloadHire(t, f.db, hire.ID).IsReviewed())
}

func TestRatingAggregation(t *testing.T) {
	f := newFixture(t)
	client := helpers.CreateClient(t, f.db)
	worker := helpers.CreateWorker(t, f.db)

	submit := func(rating int) {
		t.Helper()
		hire := helpers.CreateHire(t, f.db, client, worker, helpers.Completed(f.clock.Now()))
		token, err := f.tokens.Issue(hire.ID, client.ID)
		require.NoError(t, err)
		_, err = f.reviews.SubmitReview(f.db, &dto.SubmitReviewRequest{Token: token, Rating: rating})
		require.NoError(t, err)
		f.clock.Advance(time.Minute)
	}

	for _, r := range []int{5, 4, 3} {
		submit(r)
	}
	u := helpers.ReloadUser(t, f.db, worker.ID)
	assert.Equal(t, 4.0, u.Rating)
	assert.Equal(t, 3, u.TotalJobs)

	submit(2)
	u = helpers.ReloadUser(t, f.db, worker.ID)
	assert.Equal(t, 3.5, u.Rating)
	assert.Equal(t, 4, u.TotalJobs)

	page, err := f.reviews.GetWorkerReviews(f.db, worker.ID, 1, 3)
	require.NoError(t, err)
	assert.Len(t, page.Reviews, 3)
	assert.EqualValues(t, 4, page.Pagination.TotalReviews)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNext)
	assert.False(t, page.Pagination.HasPrev)
}

func TestRatingRecompute(t *testing.T) {
	f := newFixture(t)
	worker := helpers.CreateWorker(t, f.db)

	rating, total, err := f.ratings.Recompute(f.db, worker.ID)
	require.NoError(t, err)
	assert.Zero(t, rating)
	assert.Zero(t, total)

	client := helpers.CreateClient(t, f.db)
	for _, r := range []int{5, 5, 4} {
		hire := helpers.CreateHire(t, f.db, client, worker, helpers.Completed(baseTime))
		require.NoError(t, f.reviewRepo.Create(f.db, &models.Review{
			HireID: hire.ID, WorkerID: worker.ID, UserID: client.ID, Rating: r,
		}))
	}

	rating, total, err = f.ratings.Recompute(f.db, worker.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.7, rating)
	assert.Equal(t, 3, total)

	_, _, err = f.ratings.Recompute(f.db, "missing")
	assert.ErrorIs(t, err, apperrors.ErrWorkerNotFound)
}

func TestRoundRating(t *testing.T) {
	assert.Equal(t, 4.3, RoundRating(13.0/3.0))
	assert.Equal(t, 4.3, RoundRating(4.25))
	assert.Equal(t, 0.0, RoundRating(0))
}

func TestSubmitReview_ConcurrentSubmissionsHaveOneWinner(t *testing.T) {
	f := newFixture(t)
	client := helpers.CreateClient(t, f.db)
	worker := helpers.CreateWorker(t, f.db)
	hire := helpers.CreateHire(t, f.db, client, worker, helpers.Completed(baseTime))

	first, err := f.tokens.Issue(hire.ID, client.ID)
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	second, err := f.tokens.Issue(hire.ID, client.ID)
	require.NoError(t, err)

	tokens := []string{first, second}
	ratings := []int{5, 2}
	errs := make([]error, len(tokens))
	var wg sync.WaitGroup
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.reviews.SubmitReview(f.db, &dto.SubmitReviewRequest{Token: tokens[i], Rating: ratings[i]})
		}(i)
	}
	wg.Wait()

	winner := -1
	for i, err := range errs {
		if err == nil {
			assert.Equal(t, -1, winner, "more than one submission succeeded")
			winner = i
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrAlreadyReviewed)
	}
	require.NotEqual(t, -1, winner, "no submission succeeded")

	reloaded := helpers.ReloadHire(t, f.db, hire.ID)
	assert.Equal(t, ratings[winner], *reloaded.ReviewRating)

	_, total, err := f.reviewRepo.FindByWorker(f.db, worker.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	updated := helpers.ReloadUser(t, f.db, worker.ID)
	assert.Equal(t, 1, updated.TotalJobs)
	assert.Equal(t, float64(ratings[winner]), updated.Rating)
}

func TestSubmitReview_ReviewedAtStaysInsideWindow(t *testing.T) {
	f := newFixture(t)
	client := helpers.CreateClient(t, f.db)
	worker := helpers.CreateWorker(t, f.db)
	hire := helpers.CreateHire(t, f.db, client, worker, helpers.Completed(baseTime))

	deadline := baseTime.Add(10 * 24 * time.Hour)
	f.clock.Set(deadline)
	token, err := f.tokens.Issue(hire.ID, client.ID)
	require.NoError(t, err)

	// Every clock read after the window check lands one second later.
	f.tokens.(*reviewTokenService).now = func() time.Time {
		now := f.clock.Now()
		f.clock.Advance(time.Second)
		return now
	}

	resp, err := f.reviews.SubmitReview(f.db, &dto.SubmitReviewRequest{Token: token, Rating: 4})
	require.NoError(t, err)
	assert.True(t, resp.Review.ReviewedAt.Equal(deadline))

	reloaded := helpers.ReloadHire(t, f.db, hire.ID)
	require.NotNil(t, reloaded.ReviewedAt)
	assert.False(t, reloaded.ReviewedAt.After(deadline))
}

func TestSubmitReview_CommentLengthIsCheckedAfterTrimming(t *testing.T) {
	f := newFixture(t)
	client := helpers.CreateClient(t, f.db)
	worker := helpers.CreateWorker(t, f.db)
	hire := helpers.CreateHire(t, f.db, client, worker, helpers.Completed(baseTime))
	token, err := f.tokens.Issue(hire.ID, client.ID)
	require.NoError(t, err)

	body := strings.Repeat("a", MaxReviewCommentLength)
	resp, err := f.reviews.SubmitReview(f.db, &dto.SubmitReviewRequest{
		Token:   token,
		Rating:  5,
		Comment: "   " + body + "\n\t  ",
	})
	require.NoError(t, err)
	assert.Equal(t, body, resp.Review.Comment)
}
