// Package service implements the create-or-reuse account logic shared by the
// public certificate and appointment flows.
package service

import (
	"context"
	"strings"

	"barangay_portal_backend/internal/identity/repository"
	"barangay_portal_backend/platform/apperr"
	"barangay_portal_backend/platform/logger"
	"barangay_portal_backend/platform/phone"

	"github.com/google/uuid"
)

// RoleResident is the role given to accounts created from public submissions.
const RoleResident = "resident"

// Service resolves submitters to accounts.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates the identity service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// EnsureUser looks up an account by email, creating a resident account when
// none exists. Racing calls for the same new email resolve to one account.
func (s *Service) EnsureUser(ctx context.Context, fullName, email, phoneNumber string) (*repository.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperr.Validation("email is required")
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	first, last := SplitFullName(fullName)
	user, err := s.repo.CreateOrGet(ctx, repository.CreateUserParams{
		Email:     email,
		FirstName: first,
		LastName:  last,
		Phone:     phone.NormalizeE164(phoneNumber),
		Role:      RoleResident,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("resident account ensured", "user_id", user.ID, "email", email)
	return user, nil
}

// GetByID loads an account.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*repository.User, error) {
	return s.repo.FindByID(ctx, id)
}

// Repo exposes the repository for modules that share the users table.
func (s *Service) Repo() repository.Repository {
	return s.repo
}

// SplitFullName splits a free-text name at the first whitespace boundary.
// The remainder becomes the last name; a single-token name yields an empty
// last name. This exact rule is relied on by existing records.
func SplitFullName(fullName string) (first, last string) {
	trimmed := strings.TrimSpace(fullName)
	if trimmed == "" {
		return "", ""
	}

	parts := strings.SplitN(trimmed, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}
