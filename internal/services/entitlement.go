package services

import (
	"strings"

	"bilca_backend/internal/models"
	"bilca_backend/pkg/apperrors"
)

// EntitlementPolicy decides whether a client may create hires.
type EntitlementPolicy interface {
	CanCreateHire(client *models.User) error
}

// TierEntitlementPolicy requires the client to hold a specific subscription
// tier. An empty RequiredTier lets every client hire.
type TierEntitlementPolicy struct {
	RequiredTier string
}

func NewTierEntitlementPolicy(requiredTier string) *TierEntitlementPolicy {
	return &TierEntitlementPolicy{RequiredTier: strings.TrimSpace(requiredTier)}
}

func (p *TierEntitlementPolicy) CanCreateHire(client *models.User) error {
	if p == nil || p.RequiredTier == "" {
		return nil
	}
	if client == nil || !strings.EqualFold(client.SubscriptionTier, p.RequiredTier) {
		return apperrors.ErrClientNotEntitled
	}
	return nil
}
