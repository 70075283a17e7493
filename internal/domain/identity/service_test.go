package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/slotify/slotify/internal/platform/apperr"
	"github.com/slotify/slotify/internal/platform/auth"
)

type mockRepo struct {
	users map[uuid.UUID]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[uuid.UUID]*User)}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	for _, existing := range m.users {
		if existing.TenantSlug == u.TenantSlug && existing.Email == u.Email {
			return apperr.Conflict("an account with that email already exists")
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return u, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, slug, email string) (*User, error) {
	for _, u := range m.users {
		if u.TenantSlug == slug && u.Email == email {
			return u, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (m *mockRepo) Update(_ context.Context, u *User) error {
	if _, ok := m.users[u.ID]; !ok {
		return apperr.NotFound("user not found")
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockRepo) CountForTenant(_ context.Context, slug string) (int, error) {
	n := 0
	for _, u := range m.users {
		if u.TenantSlug == slug {
			n++
		}
	}
	return n, nil
}

type mockDirectory struct {
	slugs map[string]bool
}

func (m *mockDirectory) SlugExists(_ context.Context, slug string) (bool, error) {
	return m.slugs[slug], nil
}

func newTestService() *Service {
	repo := newMockRepo()
	dir := &mockDirectory{slugs: map[string]bool{"bella-salon": true}}
	issuer := auth.NewTokenIssuer("test-secret-at-least-32-bytes-long!!", "slotify-test", time.Hour)
	return NewService(repo, dir, issuer, zerolog.Nop())
}

func TestRegister_FirstUserIsOwner(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.Register(ctx, RegisterRequest{
		TenantSlug: "bella-salon",
		Email:      "Owner@Bella.example",
		Password:   "supersecret",
		FullName:   "Maria Garcia",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if first.Role != auth.RoleOwner {
		t.Errorf("first user role = %s, want owner", first.Role)
	}
	if first.Email != "owner@bella.example" {
		t.Errorf("email not normalized: %q", first.Email)
	}
	if first.PasswordHash == "supersecret" {
		t.Error("password stored unhashed")
	}

	second, err := svc.Register(ctx, RegisterRequest{
		TenantSlug: "bella-salon",
		Email:      "stylist@bella.example",
		Password:   "supersecret",
	})
	if err != nil {
		t.Fatalf("register second: %v", err)
	}
	if second.Role != auth.RoleStaff {
		t.Errorf("second user role = %s, want staff", second.Role)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{TenantSlug: "bella-salon", Email: "a@b.c", Password: "short"})
	if !apperr.IsKind(err, apperr.KindInvalidInput) {
		t.Errorf("short password: expected invalid input, got %v", err)
	}

	_, err = svc.Register(ctx, RegisterRequest{TenantSlug: "ghost", Email: "a@b.c", Password: "supersecret"})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("unknown tenant: expected not found, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterRequest{
		TenantSlug: "bella-salon",
		Email:      "owner@bella.example",
		Password:   "supersecret",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	token, got, err := svc.Login(ctx, "bella-salon", "owner@bella.example", "supersecret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" || got.ID != u.ID {
		t.Error("login returned empty token or wrong user")
	}

	// Wrong password, wrong email, and wrong tenant all look the same.
	for _, c := range [][3]string{
		{"bella-salon", "owner@bella.example", "wrong"},
		{"bella-salon", "ghost@bella.example", "supersecret"},
		{"other-salon", "owner@bella.example", "supersecret"},
	} {
		_, _, err := svc.Login(ctx, c[0], c[1], c[2])
		if !apperr.IsKind(err, apperr.KindUnauthenticated) {
			t.Errorf("login %v: expected unauthenticated, got %v", c, err)
		}
	}
}

func TestLogin_TokenCarriesTenantAndRole(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{
		TenantSlug: "bella-salon",
		Email:      "owner@bella.example",
		Password:   "supersecret",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	token, _, err := svc.Login(ctx, "bella-salon", "owner@bella.example", "supersecret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := svc.issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Tenant != "bella-salon" {
		t.Errorf("tenant claim = %q", claims.Tenant)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != auth.RoleOwner {
		t.Errorf("roles claim = %v", claims.Roles)
	}
}

func TestChangePassword(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterRequest{
		TenantSlug: "bella-salon",
		Email:      "owner@bella.example",
		Password:   "supersecret",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.ChangePassword(ctx, u.ID, "wrong", "newpassword1"); !apperr.IsKind(err, apperr.KindUnauthenticated) {
		t.Errorf("wrong old password: expected unauthenticated, got %v", err)
	}
	if err := svc.ChangePassword(ctx, u.ID, "supersecret", "newpassword1"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, _, err := svc.Login(ctx, "bella-salon", "owner@bella.example", "newpassword1"); err != nil {
		t.Errorf("login with new password: %v", err)
	}
}

func TestPromoteRole(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{
		TenantSlug: "bella-salon", Email: "owner@bella.example", Password: "supersecret",
	}); err != nil {
		t.Fatalf("register owner: %v", err)
	}
	member, err := svc.Register(ctx, RegisterRequest{
		TenantSlug: "bella-salon", Email: "stylist@bella.example", Password: "supersecret",
	})
	if err != nil {
		t.Fatalf("register member: %v", err)
	}

	staffCtx := context.WithValue(ctx, auth.UserRolesKey, []string{auth.RoleStaff})
	if _, err := svc.PromoteRole(staffCtx, member.ID, auth.RoleManager); !apperr.IsKind(err, apperr.KindAccessDenied) {
		t.Errorf("staff promoting: expected access denied, got %v", err)
	}

	ownerCtx := context.WithValue(ctx, auth.UserRolesKey, []string{auth.RoleOwner})
	promoted, err := svc.PromoteRole(ownerCtx, member.ID, auth.RoleManager)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if promoted.Role != auth.RoleManager {
		t.Errorf("role = %s, want manager", promoted.Role)
	}
}
