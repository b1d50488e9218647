package dto

import (
	"time"

	"bilca_backend/internal/models"
)

type CreateHireRequest struct {
	WorkerID    string   `json:"worker_id" validate:"required"`
	Service     string   `json:"service" validate:"required,max=120"`
	Description string   `json:"description" validate:"required,max=1000"`
	Budget      *float64 `json:"budget,omitempty" validate:"omitempty,gte=0"`
}

type UpdateHireStatusRequest struct {
	Status models.HireStatus `json:"status" validate:"required,is-hire-status,oneof=accepted rejected"`
}

type HireResponse struct {
	ID              string             `json:"id"`
	ClientID        string             `json:"client_id"`
	WorkerID        string             `json:"worker_id"`
	Service         string             `json:"service"`
	Description     string             `json:"description"`
	Budget          *float64           `json:"budget,omitempty"`
	Status          models.HireStatus  `json:"status"`
	WorkerCompleted bool               `json:"worker_completed"`
	ClientCompleted bool               `json:"client_completed"`
	CompletedAt     *time.Time         `json:"completed_at,omitempty"`
	ReviewEmailSent bool               `json:"review_email_sent"`
	Review          *models.HireReview `json:"review,omitempty"`
	Client          *UserSummary       `json:"client,omitempty"`
	Worker          *UserSummary       `json:"worker,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func NewHireResponse(h *models.Hire) *HireResponse {
	resp := &HireResponse{
		ID:              h.ID,
		ClientID:        h.ClientID,
		WorkerID:        h.WorkerID,
		Service:         h.Service,
		Description:     h.Description,
		Budget:          h.Budget,
		Status:          h.Status,
		WorkerCompleted: h.WorkerCompleted,
		ClientCompleted: h.ClientCompleted,
		CompletedAt:     h.CompletedAt,
		ReviewEmailSent: h.ReviewEmailSent,
		Review:          h.Review(),
		CreatedAt:       h.CreatedAt,
		UpdatedAt:       h.UpdatedAt,
	}
	if h.Client != nil {
		resp.Client = &UserSummary{ID: h.Client.ID, Name: h.Client.Name, Photo: h.Client.Photo}
	}
	if h.Worker != nil {
		resp.Worker = &UserSummary{ID: h.Worker.ID, Name: h.Worker.Name, Photo: h.Worker.Photo, Rating: h.Worker.Rating}
	}
	return resp
}

func NewHireResponses(hires []models.Hire) []*HireResponse {
	out := make([]*HireResponse, 0, len(hires))
	for i := range hires {
		out = append(out, NewHireResponse(&hires[i]))
	}
	return out
}
