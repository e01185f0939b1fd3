package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/gisgate/backend/domain"
	"github.com/gisgate/backend/pkg/ticket"
	authnUC "github.com/gisgate/backend/usecase/authn"
)

// userLookupStub wraps every miss the way a storage layer would, so the
// handler sees a decorated not-found rather than the bare sentinel.
type userLookupStub struct{}

func (userLookupStub) FindByEmail(_ context.Context, application, email string) (*domain.User, error) {
	return nil, fmt.Errorf("query users for %s: %w", application, domain.ErrUserNotFound)
}

func (userLookupStub) FindByAdminToken(context.Context, string, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (userLookupStub) Create(context.Context, *domain.User) error  { return domain.ErrInvalidPayload }
func (userLookupStub) Save(context.Context, *domain.User) error    { return domain.ErrUserNotFound }
func (userLookupStub) RecordLogin(context.Context, string) error   { return nil }
func (userLookupStub) ListWaiting(context.Context, string) ([]*domain.User, error) {
	return nil, nil
}

type tenantStub struct{}

func (tenantStub) Load(context.Context, string) (*domain.TenantConfig, error) {
	return &domain.TenantConfig{Application: "app1", Roles: []string{"viewer"}}, nil
}
func (tenantStub) Create(context.Context, *domain.TenantConfig) error { return nil }

type continuationStub struct{}

func (continuationStub) Get(_ context.Context, id string) (*domain.ContinuationSession, error) {
	return &domain.ContinuationSession{
		ID:          id,
		Email:       "gone@test.com",
		Application: "app1",
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil
}
func (continuationStub) Save(context.Context, *domain.ContinuationSession) error { return nil }
func (continuationStub) Delete(context.Context, string) error                    { return nil }

type tokenStub struct{}

func (tokenStub) RequestToken(context.Context, string, string) (*domain.DownstreamToken, error) {
	return &domain.DownstreamToken{Value: "tok"}, nil
}

func newHandlerFixture() (*AuthenticateHandler, *ticket.Codec) {
	codec := ticket.NewCodec("handler-test-secret", "gisgate-test", time.Hour, 24*time.Hour)
	uc := authnUC.New(userLookupStub{}, tenantStub{}, continuationStub{}, tokenStub{},
		codec, "pepper", "admin", nil)
	return NewAuthenticateHandler(uc, nil, nil), codec
}

func TestLoginHidesUnknownUserBehindUnauthorized(t *testing.T) {
	h, _ := newHandlerFixture()

	var ctx fasthttp.RequestCtx
	ctx.Request.SetBody([]byte(`{"email":"gone@test.com","password":"123abc","application":"app1"}`))
	h.Login(&ctx)

	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())
	body := string(ctx.Response.Body())
	assert.Contains(t, body, domain.ErrInvalidCredentials.Message)
	assert.NotContains(t, body, "not found")
}

func TestResumeTreatsMissingUserAsInvalidTicket(t *testing.T) {
	h, codec := newHandlerFixture()

	opaque, _, err := codec.Issue("gone@test.com", "app1", true)
	require.NoError(t, err)

	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/api/v1/authenticate/resume?application=app1")
	ctx.Request.Header.SetCookie(TicketCookie, opaque)
	h.Resume(&ctx)

	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), domain.ErrTicketInvalid.Message)
}
