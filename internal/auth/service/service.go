package service

import (
	"context"
	"strings"
	"time"

	"barangay_portal_backend/internal/auth/password"
	"barangay_portal_backend/internal/identity/repository"
	identityservice "barangay_portal_backend/internal/identity/service"
	"barangay_portal_backend/platform/apperr"
	"barangay_portal_backend/platform/config"
	"barangay_portal_backend/platform/logger"
	"barangay_portal_backend/platform/phone"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	accessTokenType = "access"

	RoleResident = "resident"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
)

type Service struct {
	users repository.Repository
	cfg   config.AuthServiceConfig
	log   *logger.Logger
}

func New(users repository.Repository, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{users: users, cfg: cfg, log: log}
}

// Register creates a password-protected account. The very first account
// becomes the admin so a fresh install can be bootstrapped; everyone after
// that registers as a resident. An account that already exists from a public
// submission (no password yet) is claimed by setting its password.
func (s *Service) Register(ctx context.Context, fullName, email, phoneNumber, plainPassword string) (*repository.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperr.Validation("email is required")
	}
	if len(plainPassword) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}

	role := RoleResident
	adminCount, err := s.users.CountByRole(ctx, RoleAdmin)
	if err != nil {
		return nil, err
	}
	if adminCount == 0 {
		role = RoleAdmin
	}

	first, last := identityservice.SplitFullName(fullName)
	user, err := s.users.CreateOrGet(ctx, repository.CreateUserParams{
		Email:        email,
		PasswordHash: &hash,
		FirstName:    first,
		LastName:     last,
		Phone:        phone.NormalizeE164(phoneNumber),
		Role:         role,
	})
	if err != nil {
		return nil, err
	}

	if user.PasswordHash == nil {
		// Existing submission-only account, attach the password to claim it.
		if err := s.users.SetPassword(ctx, user.ID, hash); err != nil {
			return nil, err
		}
		user.PasswordHash = &hash
		return user, nil
	}
	// CreateOrGet returns our exact hash only when the insert won, so a
	// differing hash means the email was already registered.
	if *user.PasswordHash != hash {
		return nil, apperr.Conflict("an account with this email already exists")
	}

	s.log.AuthEvent("register", email, true, "")
	return user, nil
}

// Login verifies credentials and issues a signed access token.
func (s *Service) Login(ctx context.Context, email, plainPassword string) (string, *repository.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		s.log.AuthEvent("login", email, false, "unknown email")
		return "", nil, apperr.Unauthorized("invalid credentials")
	}
	if user.PasswordHash == nil {
		s.log.AuthEvent("login", email, false, "no password set")
		return "", nil, apperr.Unauthorized("invalid credentials")
	}
	if err := password.Compare(*user.PasswordHash, plainPassword); err != nil {
		s.log.AuthEvent("login", email, false, "wrong password")
		return "", nil, apperr.Unauthorized("invalid credentials")
	}

	accessToken, err := s.signJWT(user.ID, []string{user.Role})
	if err != nil {
		return "", nil, apperr.Wrap(apperr.KindInternal, "failed to sign token", err)
	}

	s.log.AuthEvent("login", email, true, "")
	return accessToken, user, nil
}

// Me loads the account behind an access token's subject.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*repository.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *Service) signJWT(userID uuid.UUID, roles []string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"type":  accessTokenType,
		"roles": roles,
		"exp":   now.Add(s.cfg.GetAccessTokenTTL()).Unix(),
		"iat":   now.Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}
