package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/slotify/slotify/internal/platform/apperr"
	"github.com/slotify/slotify/internal/platform/auth"
)

// TenantDirectory is the slice of the tenant module identity needs: it
// validates the slug a user registers or logs in under.
type TenantDirectory interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

type Service struct {
	repo    Repository
	tenants TenantDirectory
	issuer  *auth.TokenIssuer
	log     zerolog.Logger
	now     func() time.Time
}

func NewService(repo Repository, tenants TenantDirectory, issuer *auth.TokenIssuer, log zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		tenants: tenants,
		issuer:  issuer,
		log:     log.With().Str("component", "identity").Logger(),
		now:     time.Now,
	}
}

type RegisterRequest struct {
	TenantSlug string
	Email      string
	Password   string
	FullName   string
}

// Register creates an account under a tenant. The tenant's first account
// becomes the owner; later accounts start as plain staff until promoted.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "email is required")
	}
	if len(req.Password) < 8 {
		return nil, apperr.New(apperr.KindInvalidInput, "password must be at least 8 characters")
	}

	exists, err := s.tenants.SlugExists(ctx, req.TenantSlug)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("tenant not found")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := auth.RoleStaff
	n, err := s.repo.CountForTenant(ctx, req.TenantSlug)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		role = auth.RoleOwner
	}

	now := s.now()
	u := &User{
		ID:           uuid.New(),
		TenantSlug:   req.TenantSlug,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", u.ID.String()).Str("tenant", u.TenantSlug).Str("role", u.Role).Msg("user registered")
	return u, nil
}

// Login verifies credentials and returns a signed token. A wrong slug, a
// wrong email, and a wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, tenantSlug, email, password string) (string, *User, error) {
	u, err := s.repo.GetByEmail(ctx, tenantSlug, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return "", nil, apperr.New(apperr.KindUnauthenticated, "invalid credentials")
		}
		return "", nil, err
	}
	if !u.Active {
		return "", nil, apperr.New(apperr.KindUnauthenticated, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperr.New(apperr.KindUnauthenticated, "invalid credentials")
	}

	token, err := s.issuer.Issue(u.ID.String(), u.TenantSlug, []string{u.Role})
	if err != nil {
		return "", nil, err
	}

	s.log.Info().Str("user_id", u.ID.String()).Str("tenant", u.TenantSlug).Msg("user logged in")
	return token, u, nil
}

// PromoteRole changes another user's role. Owner only.
func (s *Service) PromoteRole(ctx context.Context, userID uuid.UUID, role string) (*User, error) {
	if !auth.HasRole(ctx, auth.RoleAdmin) {
		return nil, apperr.AccessDenied("owner role required")
	}
	switch role {
	case auth.RoleOwner, auth.RoleAdmin, auth.RoleManager, auth.RoleStaff:
	default:
		return nil, apperr.Newf(apperr.KindInvalidInput, "unknown role %q", role)
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.Role = role
	u.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword rehashes the caller's password after verifying the old one.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return apperr.New(apperr.KindInvalidInput, "password must be at least 8 characters")
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)); err != nil {
		return apperr.New(apperr.KindUnauthenticated, "invalid credentials")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = s.now()
	return s.repo.Update(ctx, u)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}
