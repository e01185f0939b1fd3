package authn

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gisgate/backend/domain"
	"github.com/gisgate/backend/pkg/password"
	"github.com/gisgate/backend/pkg/ticket"
	"github.com/gisgate/backend/repository"
)

const (
	testPepper      = "unit-test-pepper"
	testApplication = "app1"
	testEmail       = "test@test.com"
	testPassword    = "123abc"
)

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		repo.users[u.Application+"/"+u.Email] = u
	}
	return repo
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, application, email string) (*domain.User, error) {
	user, ok := r.users[application+"/"+domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) FindByAdminToken(_ context.Context, application, token string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Application == application && u.AdminToken == token && token != "" {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	key := user.Application + "/" + user.Email
	if _, ok := r.users[key]; ok {
		return domain.ErrDuplicateUser
	}
	clone := *user
	r.users[key] = &clone
	return nil
}

func (r *fakeUserRepo) Save(_ context.Context, user *domain.User) error {
	for key, existing := range r.users {
		if existing.ID == user.ID {
			clone := *user
			r.users[key] = &clone
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (r *fakeUserRepo) RecordLogin(_ context.Context, id string) error {
	for _, u := range r.users {
		if u.ID == id {
			u.LastLoginAt = time.Now()
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (r *fakeUserRepo) ListWaiting(_ context.Context, application string) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range r.users {
		if u.Application == application && !u.Approved && !u.Active {
			clone := *u
			out = append(out, &clone)
		}
	}
	return out, nil
}

type fakeTenantRepo struct {
	configs map[string]*domain.TenantConfig
}

func (r *fakeTenantRepo) Load(_ context.Context, application string) (*domain.TenantConfig, error) {
	cfg, ok := r.configs[application]
	if !ok {
		return nil, domain.ErrTenantNotFound
	}
	return cfg, nil
}

func (r *fakeTenantRepo) Create(_ context.Context, cfg *domain.TenantConfig) error {
	r.configs[cfg.Application] = cfg
	return nil
}

type fakeContinuationRepo struct {
	sessions map[string]*domain.ContinuationSession
}

func (r *fakeContinuationRepo) Get(_ context.Context, id string) (*domain.ContinuationSession, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrTicketInvalid
	}
	return session, nil
}

func (r *fakeContinuationRepo) Save(_ context.Context, session *domain.ContinuationSession) error {
	r.sessions[session.ID] = session
	return nil
}

func (r *fakeContinuationRepo) Delete(_ context.Context, id string) error {
	delete(r.sessions, id)
	return nil
}

type fakeTokenClient struct {
	calls []string
	err   error
}

func (c *fakeTokenClient) RequestToken(_ context.Context, application, role string) (*domain.DownstreamToken, error) {
	c.calls = append(c.calls, application+"_"+role)
	if c.err != nil {
		return nil, c.err
	}
	return &domain.DownstreamToken{
		Value:   "gis-token-" + role,
		Expires: time.Now().Add(time.Hour),
	}, nil
}

type fixture struct {
	uc      *UseCase
	users   *fakeUserRepo
	tenants *fakeTenantRepo
	conts   *fakeContinuationRepo
	tokens  *fakeTokenClient
}

func newFixture(t *testing.T, users ...*domain.User) *fixture {
	t.Helper()

	tenants := &fakeTenantRepo{configs: map[string]*domain.TenantConfig{
		testApplication: {
			Application:          testApplication,
			AdministrativeEmails: []string{"admin@test.com"},
			Roles:                []string{"admin", "editor", "viewer"},
		},
	}}
	conts := &fakeContinuationRepo{sessions: make(map[string]*domain.ContinuationSession)}
	tokens := &fakeTokenClient{}
	userRepo := newFakeUserRepo(users...)
	codec := ticket.NewCodec("unit-test-secret", "gisgate-test", time.Hour, 24*time.Hour)

	uc := New(userRepo, tenants, conts, tokens, codec, testPepper, "admin", nil)
	return &fixture{uc: uc, users: userRepo, tenants: tenants, conts: conts, tokens: tokens}
}

func makeUser(t *testing.T, roles ...string) *domain.User {
	t.Helper()

	salt, err := password.GenerateSalt()
	require.NoError(t, err)
	hash, err := password.Hash(testPassword, salt, testPepper)
	require.NoError(t, err)

	if roles == nil {
		roles = []string{}
	}
	return &domain.User{
		ID:           "user-1",
		Email:        testEmail,
		Name:         "Test User",
		Application:  testApplication,
		Roles:        roles,
		Approved:     len(roles) > 0,
		Active:       len(roles) > 0,
		PasswordHash: hash,
		Salt:         salt,
	}
}

func TestLoginSuccess(t *testing.T) {
	f := newFixture(t, makeUser(t, "viewer"))

	artifact, err := f.uc.Login(context.Background(), LoginInput{
		Email:       testEmail,
		Password:    testPassword,
		Application: testApplication,
	})
	require.NoError(t, err)

	assert.Equal(t, "gis-token-viewer", artifact.Token.Value)
	assert.Equal(t, testEmail, artifact.Email)
	assert.Equal(t, []string{"viewer"}, artifact.Roles)
	assert.Empty(t, artifact.AdminToken)
	assert.NotEmpty(t, artifact.Ticket)
	assert.Equal(t, []string{"app1_viewer"}, f.tokens.calls)
	assert.Len(t, f.conts.sessions, 1)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t, makeUser(t, "viewer"))

	_, err := f.uc.Login(context.Background(), LoginInput{
		Email:       testEmail,
		Password:    "not-the-password",
		Application: testApplication,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Empty(t, f.tokens.calls)
}

func TestLoginUnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Login(context.Background(), LoginInput{
		Email:       "nobody@test.com",
		Password:    testPassword,
		Application: testApplication,
	})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLoginPendingUserNeverReachesTokenClient(t *testing.T) {
	f := newFixture(t, makeUser(t))

	_, err := f.uc.Login(context.Background(), LoginInput{
		Email:       testEmail,
		Password:    testPassword,
		Application: testApplication,
	})
	assert.ErrorIs(t, err, domain.ErrRoleNotAssigned)
	assert.Empty(t, f.tokens.calls, "a pending user must never trigger a downstream token request")
}

func TestLoginRotatesAdminToken(t *testing.T) {
	f := newFixture(t, makeUser(t, "admin"))

	first, err := f.uc.Login(context.Background(), LoginInput{
		Email:       testEmail,
		Password:    testPassword,
		Application: testApplication,
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.AdminToken)
	assert.True(t, strings.HasPrefix(first.AdminToken, "user-1."))

	second, err := f.uc.Login(context.Background(), LoginInput{
		Email:       testEmail,
		Password:    testPassword,
		Application: testApplication,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.AdminToken, second.AdminToken)

	// the stored token is the freshly rotated one
	stored, err := f.users.FindByAdminToken(context.Background(), testApplication, second.AdminToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", stored.ID)
	_, err = f.users.FindByAdminToken(context.Background(), testApplication, first.AdminToken)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLoginHonorsAccessWindow(t *testing.T) {
	f := newFixture(t, makeUser(t, "viewer"))
	f.tenants.configs[testApplication].UsersCanExpire = true

	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	f.uc.now = func() time.Time { return now }

	user := f.users.users[testApplication+"/"+testEmail]

	user.Access = &domain.AccessWindow{Start: now.Add(24 * time.Hour)}
	_, err := f.uc.Login(context.Background(), LoginInput{
		Email: testEmail, Password: testPassword, Application: testApplication,
	})
	var winErr *domain.AccessWindowError
	require.ErrorAs(t, err, &winErr)
	assert.Equal(t, domain.WindowTooEarly, winErr.Reason)

	user.Access = &domain.AccessWindow{End: now.Add(-24 * time.Hour)}
	_, err = f.uc.Login(context.Background(), LoginInput{
		Email: testEmail, Password: testPassword, Application: testApplication,
	})
	require.ErrorAs(t, err, &winErr)
	assert.Equal(t, domain.WindowExpired, winErr.Reason)
	assert.Empty(t, f.tokens.calls)
}

func TestLoginIgnoresWindowWhenTenantDisablesExpiry(t *testing.T) {
	user := makeUser(t, "viewer")
	user.Access = &domain.AccessWindow{End: time.Now().Add(-time.Hour)}
	f := newFixture(t, user)

	_, err := f.uc.Login(context.Background(), LoginInput{
		Email: testEmail, Password: testPassword, Application: testApplication,
	})
	assert.NoError(t, err)
}

func TestLoginSurfacesDownstreamRejection(t *testing.T) {
	f := newFixture(t, makeUser(t, "viewer"))
	f.tokens.err = &domain.DownstreamError{Message: "unable to generate token"}

	_, err := f.uc.Login(context.Background(), LoginInput{
		Email: testEmail, Password: testPassword, Application: testApplication,
	})
	var dErr *domain.DownstreamError
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, "unable to generate token", dErr.Message)
}

func TestResumeRoundTrip(t *testing.T) {
	f := newFixture(t, makeUser(t, "viewer"))

	artifact, err := f.uc.Login(context.Background(), LoginInput{
		Email:       testEmail,
		Password:    testPassword,
		Application: testApplication,
		Persist:     true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, artifact.Ticket)

	resumed, err := f.uc.Resume(context.Background(), artifact.Ticket, testApplication)
	require.NoError(t, err)
	assert.Equal(t, testEmail, resumed.Email)
	assert.Equal(t, []string{"viewer"}, resumed.Roles)
	assert.NotEmpty(t, resumed.Token.Value)
}

func TestResumeAfterRevoke(t *testing.T) {
	f := newFixture(t, makeUser(t, "viewer"))

	artifact, err := f.uc.Login(context.Background(), LoginInput{
		Email:       testEmail,
		Password:    testPassword,
		Application: testApplication,
		Persist:     true,
	})
	require.NoError(t, err)

	require.NoError(t, f.uc.Revoke(context.Background(), artifact.Ticket))

	_, err = f.uc.Resume(context.Background(), artifact.Ticket, testApplication)
	assert.ErrorIs(t, err, domain.ErrTicketInvalid)
}

func TestResumeWrongApplication(t *testing.T) {
	f := newFixture(t, makeUser(t, "viewer"))

	artifact, err := f.uc.Login(context.Background(), LoginInput{
		Email:       testEmail,
		Password:    testPassword,
		Application: testApplication,
		Persist:     true,
	})
	require.NoError(t, err)

	_, err = f.uc.Resume(context.Background(), artifact.Ticket, "other-app")
	assert.ErrorIs(t, err, domain.ErrTenantMismatch)
}

func TestResumeGarbageTicket(t *testing.T) {
	f := newFixture(t, makeUser(t, "viewer"))

	_, err := f.uc.Resume(context.Background(), "not-a-ticket", testApplication)
	assert.ErrorIs(t, err, domain.ErrTicketInvalid)
}

func TestRevokeInvalidTicketIsNoop(t *testing.T) {
	f := newFixture(t)

	assert.NoError(t, f.uc.Revoke(context.Background(), "garbage"))
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)
var _ repository.TenantRepository = (*fakeTenantRepo)(nil)
var _ repository.ContinuationRepository = (*fakeContinuationRepo)(nil)
var _ TokenClient = (*fakeTokenClient)(nil)
