package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticket-marketplace/internal/auth"
	"ticket-marketplace/internal/logger"
	"ticket-marketplace/internal/models"
	"ticket-marketplace/internal/storage"
	"ticket-marketplace/internal/utils"
)

var ErrUserNotFound = errors.New("user not found")

type UserService struct {
	store storage.Store
	log   *logger.Logger
}

func NewUserService(store storage.Store, log *logger.Logger) *UserService {
	return &UserService{store: store, log: log}
}

// actingAdmin resolves the verified identity to a stored user and checks the
// is-admin policy. Every admin operation goes through this.
func actingAdmin(store storage.Store, identity auth.Identity) (*models.User, error) {
	user, err := store.GetUserByEmail(identity.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, auth.ErrForbidden
		}
		return nil, fmt.Errorf("failed to resolve acting user: %w", err)
	}
	if err := auth.IsAdmin(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Upsert registers a first-time user as a customer or refreshes the login
// timestamp for a returning one.
func (s *UserService) Upsert(ctx context.Context, req *models.UpsertUserRequest) (*models.User, error) {
	existing, err := s.store.GetUserByEmail(req.Email)
	if err == nil {
		if err := s.store.TouchUserLogin(req.Email); err != nil {
			return nil, fmt.Errorf("failed to refresh login: %w", err)
		}
		s.log.Info("USER", fmt.Sprintf("Refreshed login for %s", req.Email))
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	now := time.Now()
	user := &models.User{
		ID:           utils.GenerateUserID(),
		Email:        req.Email,
		Name:         req.Name,
		Role:         models.RoleCustomer,
		CreatedAt:    now,
		LastLoggedIn: now,
	}
	if err := s.store.SaveUser(user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.log.Info("USER", fmt.Sprintf("Registered new customer %s", req.Email))
	return user, nil
}

func (s *UserService) List(ctx context.Context, identity auth.Identity) ([]*models.User, error) {
	if _, err := actingAdmin(s.store, identity); err != nil {
		return nil, err
	}
	return s.store.ListUsers()
}

func (s *UserService) UpdateRole(ctx context.Context, identity auth.Identity, req *models.UpdateRoleRequest) error {
	if _, err := actingAdmin(s.store, identity); err != nil {
		return err
	}

	if err := s.store.UpdateUserRole(req.ID, req.Role); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.log.Info("USER", fmt.Sprintf("Role of user %s set to %s by %s", req.ID, req.Role, identity.Email))
	return nil
}

// SetFraud marks or clears a vendor's fraud flag. Fraud-marked vendors keep
// their role but lose the listing capability.
func (s *UserService) SetFraud(ctx context.Context, identity auth.Identity, id string, fraud bool) error {
	if _, err := actingAdmin(s.store, identity); err != nil {
		return err
	}

	if err := s.store.SetUserFraud(id, fraud); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.log.LogSecurity("FRAUD_FLAG", fmt.Sprintf("User %s fraud=%t set by %s", id, fraud, identity.Email))
	return nil
}
