package register

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gisgate/backend/domain"
	"github.com/gisgate/backend/internal/notify"
	"github.com/gisgate/backend/pkg/password"
	"github.com/gisgate/backend/repository"
)

const (
	testPepper      = "register-test-pepper"
	testApplication = "app1"
)

type fakeUserRepo struct {
	users map[string]*domain.User
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
			delete(r.users, key)
			clone := *user
			r.users[user.Application+"/"+user.Email] = &clone
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (r *fakeUserRepo) RecordLogin(_ context.Context, id string) error { return nil }

func (r *fakeUserRepo) ListWaiting(_ context.Context, application string) ([]*domain.User, error) {
	return nil, nil
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

type recordingDispatcher struct {
	registered []notify.RegisteredPayload
}

func (d *recordingDispatcher) UserAccepted(notify.AcceptedPayload) error { return nil }
func (d *recordingDispatcher) UserRejected(notify.RejectedPayload) error { return nil }
func (d *recordingDispatcher) NewUserRegistered(p notify.RegisteredPayload) error {
	d.registered = append(d.registered, p)
	return nil
}

type fixture struct {
	uc       *UseCase
	users    *fakeUserRepo
	notifier *recordingDispatcher
}

func newFixture(users ...*domain.User) *fixture {
	userRepo := &fakeUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		clone := *u
		userRepo.users[u.Application+"/"+u.Email] = &clone
	}
	tenants := &fakeTenantRepo{configs: map[string]*domain.TenantConfig{
		testApplication: {
			Application:          testApplication,
			AdministrativeEmails: []string{"admin@test.com"},
			Description:          "Test tenant",
			Roles:                []string{"admin", "viewer"},
		},
	}}
	notifier := &recordingDispatcher{}
	uc := New(userRepo, tenants, notifier, testPepper, "http://gisgate.local/admin", nil)
	return &fixture{uc: uc, users: userRepo, notifier: notifier}
}

func TestRegisterCreatesPendingUser(t *testing.T) {
	f := newFixture()

	user, err := f.uc.Register(context.Background(), RegisterInput{
		Name:        "New User",
		Email:       "New.User@Test.com",
		Agency:      "Survey Dept",
		Password:    "123abc",
		Application: testApplication,
	})
	require.NoError(t, err)

	assert.Equal(t, "new.user@test.com", user.Email)
	assert.False(t, user.Approved)
	assert.False(t, user.Active)
	assert.Empty(t, user.Roles)
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, user.Salt)
	assert.NotEqual(t, "123abc", user.PasswordHash)
	assert.True(t, password.Verify("123abc", user.PasswordHash, user.Salt, testPepper))

	require.Len(t, f.notifier.registered, 1)
	payload := f.notifier.registered[0]
	assert.Equal(t, []string{"admin@test.com"}, payload.To)
	assert.Equal(t, "http://gisgate.local/admin", payload.AdminURL)
	assert.Equal(t, []string{"admin", "viewer"}, payload.Roles)
}

func TestRegisterUnknownApplication(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Register(context.Background(), RegisterInput{
		Email:       "someone@test.com",
		Password:    "123abc",
		Application: "nope",
	})
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
	assert.Empty(t, f.notifier.registered)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture()

	input := RegisterInput{
		Email:       "dup@test.com",
		Password:    "123abc",
		Application: testApplication,
	}
	_, err := f.uc.Register(context.Background(), input)
	require.NoError(t, err)

	_, err = f.uc.Register(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)
	assert.Len(t, f.notifier.registered, 1)
}

func TestRegisterMissingFields(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Register(context.Background(), RegisterInput{
		Email:       "someone@test.com",
		Application: testApplication,
	})
	assert.ErrorIs(t, err, domain.ErrMalformedRequest)
}

func existingUser(t *testing.T, email, pass string) *domain.User {
	t.Helper()
	salt, err := password.GenerateSalt()
	require.NoError(t, err)
	hash, err := password.Hash(pass, salt, testPepper)
	require.NoError(t, err)
	return &domain.User{
		ID:           "user-1",
		Email:        email,
		Application:  testApplication,
		Roles:        []string{"viewer"},
		Approved:     true,
		Active:       true,
		PasswordHash: hash,
		Salt:         salt,
	}
}

func TestChangePassword(t *testing.T) {
	f := newFixture(existingUser(t, "user@test.com", "old-pass"))

	err := f.uc.ChangePassword(context.Background(), ChangePasswordInput{
		Email:       "user@test.com",
		Application: testApplication,
		Current:     "old-pass",
		New:         "new-pass",
		NewRepeated: "new-pass",
	})
	require.NoError(t, err)

	stored := f.users.users[testApplication+"/user@test.com"]
	assert.True(t, password.Verify("new-pass", stored.PasswordHash, stored.Salt, testPepper))
	assert.False(t, password.Verify("old-pass", stored.PasswordHash, stored.Salt, testPepper))
}

func TestChangePasswordRejectsMismatchedRepeat(t *testing.T) {
	f := newFixture(existingUser(t, "user@test.com", "old-pass"))

	err := f.uc.ChangePassword(context.Background(), ChangePasswordInput{
		Email:       "user@test.com",
		Application: testApplication,
		Current:     "old-pass",
		New:         "new-pass",
		NewRepeated: "different",
	})
	assert.ErrorIs(t, err, domain.ErrMalformedRequest)
}

func TestChangePasswordRejectsWrongCurrent(t *testing.T) {
	f := newFixture(existingUser(t, "user@test.com", "old-pass"))

	err := f.uc.ChangePassword(context.Background(), ChangePasswordInput{
		Email:       "user@test.com",
		Application: testApplication,
		Current:     "wrong",
		New:         "new-pass",
		NewRepeated: "new-pass",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestChangeEmail(t *testing.T) {
	f := newFixture(existingUser(t, "user@test.com", "123abc"))

	err := f.uc.ChangeEmail(context.Background(), ChangeEmailInput{
		Email:       "user@test.com",
		NewEmail:    "Renamed@Test.com",
		Password:    "123abc",
		Application: testApplication,
	})
	require.NoError(t, err)

	_, ok := f.users.users[testApplication+"/renamed@test.com"]
	assert.True(t, ok)
	_, ok = f.users.users[testApplication+"/user@test.com"]
	assert.False(t, ok)
}

func TestChangeEmailRejectsWrongPassword(t *testing.T) {
	f := newFixture(existingUser(t, "user@test.com", "123abc"))

	err := f.uc.ChangeEmail(context.Background(), ChangeEmailInput{
		Email:       "user@test.com",
		NewEmail:    "renamed@test.com",
		Password:    "wrong",
		Application: testApplication,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)
var _ repository.TenantRepository = (*fakeTenantRepo)(nil)
var _ notify.Dispatcher = (*recordingDispatcher)(nil)
