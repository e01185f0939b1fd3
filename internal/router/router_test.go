package router

import (
	"context"
	"net/http"
	"testing"

	"github.com/valyala/fasthttp"

	"github.com/stretchr/testify/assert"

	apiHandler "github.com/gisgate/backend/api/handler"
	"github.com/gisgate/backend/domain"
	"github.com/gisgate/backend/internal/middleware"
)

type rejectAllValidator struct{}

func (rejectAllValidator) ValidateAdminToken(context.Context, string, string) (*domain.User, error) {
	return nil, domain.ErrTicketInvalid
}

func newTestRouter() fasthttp.RequestHandler {
	handlers := Handlers{
		Authenticate: apiHandler.NewAuthenticateHandler(nil, nil, nil),
		Users:        apiHandler.NewUserHandler(nil, nil, nil),
		Admin:        apiHandler.NewAdminHandler(nil, nil, nil),
		Health:       apiHandler.NewHealthHandler(nil, nil, nil),
	}
	return New(handlers, middleware.AdminAuth(rejectAllValidator{}, nil)).Handler
}

func serve(handler fasthttp.RequestHandler, method, uri string) int {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	handler(&ctx)
	return ctx.Response.StatusCode()
}

// Tenant provisioning must be reachable without an admin token, otherwise no
// first tenant (and so no admin) could ever be created on a fresh deployment.
func TestCreateApplicationNeedsNoAdminToken(t *testing.T) {
	handler := newTestRouter()

	// an empty body fails validation inside the handler; reaching that 400
	// proves the auth wrapper did not intercept the request
	status := serve(handler, fasthttp.MethodPost, "/api/v1/admin/applications")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAdminRoutesStayGuarded(t *testing.T) {
	handler := newTestRouter()

	assert.Equal(t, http.StatusUnauthorized, serve(handler, fasthttp.MethodPut, "/api/v1/admin/accept"))
	assert.Equal(t, http.StatusUnauthorized, serve(handler, fasthttp.MethodDelete, "/api/v1/admin/reject"))
	assert.Equal(t, http.StatusUnauthorized, serve(handler, fasthttp.MethodGet, "/api/v1/admin/waiting?application=app1"))
	assert.Equal(t, http.StatusUnauthorized, serve(handler, fasthttp.MethodGet, "/api/v1/admin/roles?application=app1&email=a@b.c"))
}
