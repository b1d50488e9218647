package app

import (
	"testing"

	"bilca_backend/internal/auth"
	"bilca_backend/internal/models"
	"bilca_backend/internal/repositories"
	"bilca_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDemoUsers_Idempotent(t *testing.T) {
	db := helpers.NewTestDB(t)
	users := repositories.NewUserRepository()

	require.NoError(t, seedDemoUsers(db, users, "secret-pass"))
	require.NoError(t, seedDemoUsers(db, users, "other-pass"))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	client, err := users.FindByEmail(db, "client@bilca.local")
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleClient, client.Role)
	assert.Equal(t, models.SubscriptionTierFeatured, client.SubscriptionTier)
	assert.True(t, auth.CheckPasswordHash("secret-pass", client.PasswordHash))
}
