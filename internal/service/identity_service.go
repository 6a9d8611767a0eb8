package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"

	"gorm.io/gorm"

	"taskbit/internal/model"
	"taskbit/internal/repository"
)

// IdentityService maps external identities (email, Telegram account) to users.
type IdentityService struct {
	store *repository.Store
}

func NewIdentityService(store *repository.Store) *IdentityService {
	return &IdentityService{store: store}
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", newError(ErrMissingRequiredField, "email is required")
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", newError(ErrMissingRequiredField, "%q is not a valid email address", trimmed)
	}
	return strings.ToLower(addr.Address), nil
}

// ResolveByEmail returns the enabled user registered under email.
func (s *IdentityService) ResolveByEmail(ctx context.Context, email string) (*model.User, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	user, err := s.store.Users.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "user %s", normalized)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.Enabled {
		return nil, newError(ErrNotFound, "user %s", normalized)
	}
	return user, nil
}

// ResolveTelegram returns the user behind a chat account, creating it on first contact.
func (s *IdentityService) ResolveTelegram(ctx context.Context, telegramID int64, name string) (*model.User, error) {
	user, err := s.store.Users.UpsertFromTelegram(ctx, telegramID, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if !user.Enabled {
		return nil, newError(ErrNotFound, "user %d", user.ID)
	}
	return user, nil
}

// Register creates an enabled user for email.
func (s *IdentityService) Register(ctx context.Context, email, name string) (*model.User, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	user := model.User{
		Email:   &normalized,
		Name:    strings.TrimSpace(name),
		Enabled: true,
	}
	if err := s.store.Users.Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(ErrEmailInUse, "%s", normalized)
		}
		return nil, err
	}
	log.Printf("[info] user registered id=%d email=%s", user.ID, normalized)
	return &user, nil
}

// LinkEmail attaches email to user so other clients can act on their behalf.
func (s *IdentityService) LinkEmail(ctx context.Context, user *model.User, email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	if err := s.store.Users.SetEmail(ctx, user, normalized); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return newError(ErrEmailInUse, "%s", normalized)
		}
		return err
	}
	user.Email = &normalized
	return nil
}

// SetEnabled switches a user on or off. Disabled users fail every core operation.
func (s *IdentityService) SetEnabled(ctx context.Context, email string, enabled bool) (*model.User, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	user, err := s.store.Users.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, "user %s", normalized)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := s.store.Users.SetEnabled(ctx, user, enabled); err != nil {
		return nil, err
	}
	user.Enabled = enabled
	log.Printf("[info] user id=%d enabled=%t", user.ID, enabled)
	return user, nil
}

// Reachable lists enabled users with a linked chat account.
func (s *IdentityService) Reachable(ctx context.Context) ([]model.User, error) {
	return s.store.Users.ListReachable(ctx)
}
