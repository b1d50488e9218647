package dto

import (
	"time"

	"bilca_backend/internal/models"
)

// SubmitReviewRequest leaves the comment length to the service, which trims first.
type SubmitReviewRequest struct {
	Token   string `json:"token" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// ReviewHireSummary is the public projection shown on the review page. It
// carries nothing about the client.
type ReviewHireSummary struct {
	ID          string      `json:"id"`
	Worker      UserSummary `json:"worker"`
	Service     string      `json:"service"`
	Description string      `json:"description"`
}

type ReviewTokenValidationResponse struct {
	Valid bool              `json:"valid"`
	Hire  ReviewHireSummary `json:"hire"`
}

type SubmitReviewResponse struct {
	Message string            `json:"message"`
	Review  models.HireReview `json:"review"`
}

type ReviewResponse struct {
	ID        string       `json:"id"`
	HireID    string       `json:"hire_id"`
	Rating    int          `json:"rating"`
	Comment   string       `json:"comment"`
	User      *UserSummary `json:"user,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

type ReviewPagination struct {
	CurrentPage  int   `json:"current_page"`
	TotalPages   int   `json:"total_pages"`
	TotalReviews int64 `json:"total_reviews"`
	HasNext      bool  `json:"has_next"`
	HasPrev      bool  `json:"has_prev"`
}

type WorkerReviewsResponse struct {
	Reviews    []*ReviewResponse `json:"reviews"`
	Pagination ReviewPagination  `json:"pagination"`
}

func NewReviewResponse(r *models.Review) *ReviewResponse {
	resp := &ReviewResponse{
		ID:        r.ID,
		HireID:    r.HireID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
	if r.User != nil {
		resp.User = &UserSummary{ID: r.User.ID, Name: r.User.Name, Photo: r.User.Photo}
	}
	return resp
}
