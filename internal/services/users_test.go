package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticket-marketplace/internal/auth"
	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/models"
	"ticket-marketplace/internal/services"
	"ticket-marketplace/internal/storage"
)

func TestUpsertRegistersNewUserAsCustomer(t *testing.T) {
	store := storage.NewInMemoryStore()
	svc := services.NewUserService(store, logger.NewLogger())

	user, err := svc.Upsert(context.Background(), &models.UpsertUserRequest{
		Email: "new@example.com",
		Name:  "New User",
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.LastLoggedIn.IsZero())
}

func TestUpsertKeepsExistingRoleOnReturn(t *testing.T) {
	store := storage.NewInMemoryStore()
	svc := services.NewUserService(store, logger.NewLogger())
	existing := seedUser(t, store, "vendor@example.com", models.RoleVendor, false)

	user, err := svc.Upsert(context.Background(), &models.UpsertUserRequest{
		Email: "vendor@example.com",
		Name:  "Vendor",
	})
	require.NoError(t, err)

	assert.Equal(t, existing.ID, user.ID)
	assert.Equal(t, models.RoleVendor, user.Role, "returning user keeps the assigned role")
}

func TestUpdateRoleRequiresAdmin(t *testing.T) {
	store := storage.NewInMemoryStore()
	svc := services.NewUserService(store, logger.NewLogger())
	target := seedUser(t, store, "customer@example.com", models.RoleCustomer, false)

	err := svc.UpdateRole(context.Background(), auth.Identity{Email: "customer@example.com"}, &models.UpdateRoleRequest{
		ID:   target.ID,
		Role: models.RoleVendor,
	})
	assert.ErrorIs(t, err, auth.ErrForbidden)

	seedUser(t, store, "admin@example.com", models.RoleAdmin, false)
	err = svc.UpdateRole(context.Background(), auth.Identity{Email: "admin@example.com"}, &models.UpdateRoleRequest{
		ID:   target.ID,
		Role: models.RoleVendor,
	})
	require.NoError(t, err)

	updated, err := store.GetUserByEmail("customer@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleVendor, updated.Role)
}

func TestUpdateRoleUnknownUser(t *testing.T) {
	store := storage.NewInMemoryStore()
	svc := services.NewUserService(store, logger.NewLogger())
	seedUser(t, store, "admin@example.com", models.RoleAdmin, false)

	err := svc.UpdateRole(context.Background(), auth.Identity{Email: "admin@example.com"}, &models.UpdateRoleRequest{
		ID:   "user-missing",
		Role: models.RoleVendor,
	})
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestSetFraudTogglesWithoutChangingRole(t *testing.T) {
	store := storage.NewInMemoryStore()
	svc := services.NewUserService(store, logger.NewLogger())
	vendor := seedUser(t, store, "vendor@example.com", models.RoleVendor, false)
	seedUser(t, store, "admin@example.com", models.RoleAdmin, false)
	admin := auth.Identity{Email: "admin@example.com"}

	require.NoError(t, svc.SetFraud(context.Background(), admin, vendor.ID, true))

	marked, err := store.GetUserByEmail("vendor@example.com")
	require.NoError(t, err)
	assert.True(t, marked.Fraud)
	assert.Equal(t, models.RoleVendor, marked.Role)

	require.NoError(t, svc.SetFraud(context.Background(), admin, vendor.ID, false))

	cleared, err := store.GetUserByEmail("vendor@example.com")
	require.NoError(t, err)
	assert.False(t, cleared.Fraud)
}

func TestListUsersRequiresAdmin(t *testing.T) {
	store := storage.NewInMemoryStore()
	svc := services.NewUserService(store, logger.NewLogger())
	seedUser(t, store, "customer@example.com", models.RoleCustomer, false)

	_, err := svc.List(context.Background(), auth.Identity{Email: "customer@example.com"})
	assert.ErrorIs(t, err, auth.ErrForbidden)

	_, err = svc.List(context.Background(), auth.Identity{Email: "stranger@example.com"})
	assert.ErrorIs(t, err, auth.ErrForbidden)
}
