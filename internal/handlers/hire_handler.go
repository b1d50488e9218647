package handlers

import (
	"net/http"

	"bilca_backend/internal/middleware"
	"bilca_backend/internal/models"
	"bilca_backend/internal/services"
	"bilca_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type HireHandler struct {
	*BaseHandler
	hireService services.HireService
}

func NewHireHandler(base *BaseHandler, hireService services.HireService) *HireHandler {
	return &HireHandler{
		BaseHandler: base,
		hireService: hireService,
	}
}

func (h *HireHandler) RegisterRoutes(r *gin.RouterGroup) {
	hires := r.Group("/hires")
	hires.Use(h.Auth())
	{
		hires.GET("", h.GetHires)
		hires.GET("/:id", h.GetHire)

		// Worker side
		hires.PUT("/:id/status", middleware.RequireRoles(models.UserRoleWorker), h.UpdateStatus)
		hires.PUT("/:id/status/completed", middleware.RequireRoles(models.UserRoleWorker), h.MarkWorkerCompleted)

		// Client side
		hires.POST("", middleware.RequireRoles(models.UserRoleClient), h.CreateHire)
		hires.GET("/completed", middleware.RequireRoles(models.UserRoleClient), h.GetCompletedHires)
		hires.POST("/:id/confirm-completion", middleware.RequireRoles(models.UserRoleClient), h.ConfirmClientCompletion)
	}
}

func (h *HireHandler) CreateHire(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateHireRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	hire, err := h.hireService.CreateHire(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, hire)
}

func (h *HireHandler) GetHires(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, limit := ParseLimitPagination(c)
	hires, err := h.hireService.GetHires(h.GetDB(c), userID, page, limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, hires)
}

func (h *HireHandler) GetCompletedHires(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, limit := ParseLimitPagination(c)
	hires, err := h.hireService.GetCompletedHires(h.GetDB(c), userID, page, limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, hires)
}

func (h *HireHandler) GetHire(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	hire, err := h.hireService.GetHire(h.GetDB(c), c.Param("id"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, hire)
}

// UpdateStatus is the worker's accept/reject call. A pending hire may go to
// accepted or rejected. An accepted hire may still be rejected until the
// worker marks it done; after that the endpoint answers 400 CONFLICT.
func (h *HireHandler) UpdateStatus(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateHireStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	hire, err := h.hireService.UpdateStatus(h.GetDB(c), c.Param("id"), userID, req.Status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, hire)
}

func (h *HireHandler) MarkWorkerCompleted(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	hire, err := h.hireService.MarkWorkerCompleted(h.GetDB(c), c.Param("id"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, hire)
}

func (h *HireHandler) ConfirmClientCompletion(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	hire, err := h.hireService.ConfirmClientCompletion(h.GetDB(c), c.Param("id"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, hire)
}
