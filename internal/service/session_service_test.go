package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/repository-api/internal/auth"
	"github.com/spec-kit/repository-api/internal/config"
	"github.com/spec-kit/repository-api/internal/domain"
	"github.com/spec-kit/repository-api/internal/service"
	"github.com/spec-kit/repository-api/internal/tenancy"
)

const testSecret = "test-secret"

type fakeUserRepo struct {
	seq   int64
	users map[string][]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string][]*domain.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, schema string, user *domain.User) error {
	f.seq++
	user.ID = f.seq
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[schema] = append(f.users[schema], user)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, schema string, id int64) (*domain.User, error) {
	for _, user := range f.users[schema] {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, schema string, email string) (*domain.User, error) {
	for _, user := range f.users[schema] {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeGrantRepo struct {
	grants map[string]map[int64][]domain.AdminSetGrant
}

func newFakeGrantRepo() *fakeGrantRepo {
	return &fakeGrantRepo{grants: map[string]map[int64][]domain.AdminSetGrant{}}
}

func (f *fakeGrantRepo) ListForUser(_ context.Context, schema string, userID int64) ([]domain.AdminSetGrant, error) {
	return f.grants[schema][userID], nil
}

func (f *fakeGrantRepo) set(schema string, userID int64, grants []domain.AdminSetGrant) {
	if f.grants[schema] == nil {
		f.grants[schema] = map[int64][]domain.AdminSetGrant{}
	}
	f.grants[schema][userID] = grants
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:            testSecret,
			AccessTokenTTLHours:  1,
			RefreshTokenTTLHours: 168,
			BcryptCost:           bcrypt.MinCost,
		},
	}
}

func newTestService(t *testing.T, revocations *service.RevocationStore) (*service.SessionService, *fakeUserRepo, *fakeGrantRepo) {
	t.Helper()
	users := newFakeUserRepo()
	grants := newFakeGrantRepo()
	svc := service.NewSessionService(testConfig(), service.SessionDependencies{
		UserRepo:    users,
		GrantRepo:   grants,
		Revocations: revocations,
	}, zap.NewNop())
	return svc, users, grants
}

func seedUser(t *testing.T, users *fakeUserRepo, schema, email, password string, roles ...string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &domain.User{Email: email, PasswordHash: string(hash), Roles: roles}
	require.NoError(t, users.Create(context.Background(), schema, user))
	return user
}

func tenantContext(tenant string) tenancy.Context {
	return tenancy.Context{Account: domain.Account{ID: 1, Tenant: tenant, Name: tenant, Cname: tenant + ".repo.example"}}
}

func TestLoginIssuesTokenPair(t *testing.T) {
	svc, users, _ := newTestService(t, nil)
	ctx := context.Background()
	tc := tenantContext("acme")
	seedUser(t, users, "acme", "a@x.com", "secret", "admin")

	session, err := svc.Login(ctx, tc, "a@x.com", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, session.AccessToken)
	require.NotEmpty(t, session.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.AccessExpires, 5*time.Second)
	assert.WithinDuration(t, time.Now().Add(168*time.Hour), session.RefreshExpires, 5*time.Second)

	codec := auth.NewCodec(testSecret)
	accessClaims, err := codec.Decode("acme", session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, accessClaims.UserID)
	assert.Equal(t, []string{"admin"}, accessClaims.Roles)

	refreshClaims, err := codec.Decode("acme", session.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, refreshClaims.UserID)
	assert.Empty(t, refreshClaims.Roles, "refresh tokens carry no role snapshot")

	assert.Equal(t, "a@x.com", session.Projection.Email)
	assert.Equal(t, []string{"admin"}, session.Projection.Type)
	assert.Empty(t, session.Projection.Participants)
}

func TestLoginFailureIsUniform(t *testing.T) {
	svc, users, _ := newTestService(t, nil)
	ctx := context.Background()
	tc := tenantContext("acme")
	seedUser(t, users, "acme", "a@x.com", "secret")

	_, unknownErr := svc.Login(ctx, tc, "nobody@x.com", "secret")
	_, wrongErr := svc.Login(ctx, tc, "a@x.com", "wrong")

	require.ErrorIs(t, unknownErr, service.ErrInvalidCredentials)
	require.ErrorIs(t, wrongErr, service.ErrInvalidCredentials)
	assert.Equal(t, unknownErr, wrongErr)
}

func TestRefreshRecomputesRoles(t *testing.T) {
	svc, users, _ := newTestService(t, nil)
	ctx := context.Background()
	tc := tenantContext("acme")
	user := seedUser(t, users, "acme", "a@x.com", "secret")

	session, err := svc.Login(ctx, tc, "a@x.com", "secret")
	require.NoError(t, err)

	user.Roles = []string{"admin"}

	refreshed, err := svc.Refresh(ctx, tc, session.RefreshToken)
	require.NoError(t, err)

	claims, err := auth.NewCodec(testSecret).Decode("acme", refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, claims.Roles)
	assert.Equal(t, []string{"admin"}, refreshed.Projection.Type)
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	svc, users, _ := newTestService(t, nil)
	ctx := context.Background()
	tc := tenantContext("acme")
	user := seedUser(t, users, "acme", "a@x.com", "secret")

	expired, err := auth.NewCodec(testSecret).Encode("acme", user.ID, nil, time.Now().Add(-2*time.Hour), time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, tc, expired)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestRefreshRejectsMissingAndGarbageTokens(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()
	tc := tenantContext("acme")

	_, err := svc.Refresh(ctx, tc, "")
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	_, err = svc.Refresh(ctx, tc, "not.a.token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestRefreshDoesNotCrossTenants(t *testing.T) {
	svc, users, _ := newTestService(t, nil)
	ctx := context.Background()
	victim := seedUser(t, users, "acme", "a@x.com", "secret")

	session, err := svc.Login(ctx, tenantContext("acme"), "a@x.com", "secret")
	require.NoError(t, err)

	// Per-schema id sequences make collisions routine; give the other tenant
	// a user with the same id so only the token binding can tell them apart.
	users.users["globex"] = []*domain.User{{ID: victim.ID, Email: "b@y.com", PasswordHash: victim.PasswordHash}}

	_, err = svc.Refresh(ctx, tenantContext("globex"), session.RefreshToken)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestRefreshRejectsDeletedUser(t *testing.T) {
	svc, users, _ := newTestService(t, nil)
	ctx := context.Background()
	tc := tenantContext("acme")
	seedUser(t, users, "acme", "a@x.com", "secret")

	session, err := svc.Login(ctx, tc, "a@x.com", "secret")
	require.NoError(t, err)

	users.users["acme"] = nil

	_, err = svc.Refresh(ctx, tc, session.RefreshToken)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestLogoutRevokesEarlierTokens(t *testing.T) {
	svc, users, _ := newTestService(t, newTestRevocationStore(t))
	ctx := context.Background()
	tc := tenantContext("acme")
	user := seedUser(t, users, "acme", "a@x.com", "secret")

	// Minted in a previous second, as any real pre-logout token would be.
	earlier, err := auth.NewCodec(testSecret).Encode("acme", user.ID, nil, time.Now().Add(-2*time.Second), time.Now().Add(time.Hour))
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, tc, user.ID))

	_, err = svc.Refresh(ctx, tc, earlier)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	// Logout is idempotent.
	require.NoError(t, svc.Logout(ctx, tc, user.ID))
}

func TestCurrentFiltersSuperAdminAndProjectsGrants(t *testing.T) {
	svc, users, grants := newTestService(t, nil)
	ctx := context.Background()
	tc := tenantContext("acme")
	user := seedUser(t, users, "acme", "a@x.com", "secret", "admin", domain.RoleSuperAdmin)
	grants.set("acme", user.ID, []domain.AdminSetGrant{
		{AdminSet: "Default", Access: domain.AccessView},
		{AdminSet: "Default", Access: domain.AccessManage},
	})

	projection, err := svc.Current(ctx, tc, user)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", projection.Email)
	assert.Equal(t, []string{"admin"}, projection.Type)
	assert.Equal(t, []map[string]string{{"Default": "manage"}}, projection.Participants)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()
	tc := tenantContext("acme")

	_, err := svc.Register(ctx, tc, "", "short", "different")
	var validation *service.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Messages, "email")
	assert.Contains(t, validation.Messages, "password")
	assert.Contains(t, validation.Messages, "password_confirmation")
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, users, _ := newTestService(t, nil)
	ctx := context.Background()
	tc := tenantContext("acme")
	seedUser(t, users, "acme", "a@x.com", "secret")

	_, err := svc.Register(ctx, tc, "a@x.com", "secret123", "secret123")
	var validation *service.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, []string{"has already been taken"}, validation.Messages["email"])
}

func TestRegisterCreatesWorkingSession(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()
	tc := tenantContext("acme")

	session, err := svc.Register(ctx, tc, "new@x.com", "secret123", "secret123")
	require.NoError(t, err)
	require.NotZero(t, session.User.ID)

	again, err := svc.Login(ctx, tc, "new@x.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, again.User.ID)
}
