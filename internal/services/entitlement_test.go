package services

import (
	"testing"

	"bilca_backend/internal/models"
	"bilca_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestTierEntitlementPolicy(t *testing.T) {
	featured := &models.User{SubscriptionTier: "Featured"}
	free := &models.User{SubscriptionTier: "free"}

	open := NewTierEntitlementPolicy("  ")
	assert.NoError(t, open.CanCreateHire(free))

	gated := NewTierEntitlementPolicy("featured")
	assert.NoError(t, gated.CanCreateHire(featured))
	assert.ErrorIs(t, gated.CanCreateHire(free), apperrors.ErrClientNotEntitled)
	assert.ErrorIs(t, gated.CanCreateHire(nil), apperrors.ErrClientNotEntitled)
}
