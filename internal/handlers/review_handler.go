package handlers

import (
	"net/http"

	"bilca_backend/internal/services"
	"bilca_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// ReviewHandler serves the public review page. The signed token is the
// only credential, so none of these routes require login.
type ReviewHandler struct {
	*BaseHandler
	reviewService services.ReviewService
}

func NewReviewHandler(base *BaseHandler, reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:   base,
		reviewService: reviewService,
	}
}

func (h *ReviewHandler) RegisterRoutes(r *gin.RouterGroup) {
	public := r.Group("/reviews")
	{
		public.GET("/validate/:token", h.ValidateToken)
		public.POST("/submit", h.SubmitReview)
		public.GET("/workers/:id/reviews", h.GetWorkerReviews)
	}
}

func (h *ReviewHandler) ValidateToken(c *gin.Context) {
	summary, err := h.reviewService.ValidateToken(h.GetDB(c), c.Param("token"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	var req dto.SubmitReviewRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.reviewService.SubmitReview(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ReviewHandler) GetWorkerReviews(c *gin.Context) {
	page, limit := ParseLimitPagination(c)

	reviews, err := h.reviewService.GetWorkerReviews(h.GetDB(c), c.Param("id"), page, limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}
