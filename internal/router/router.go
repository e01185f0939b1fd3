package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/gisgate/backend/api/handler"
)

type Handlers struct {
	Authenticate *apiHandler.AuthenticateHandler
	Users        *apiHandler.UserHandler
	Admin        *apiHandler.AdminHandler
	Health       *apiHandler.HealthHandler
}

func New(handlers Handlers, adminAuth func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Authentication routes
	r.POST("/api/v1/authenticate/login", handlers.Authenticate.Login)
	r.GET("/api/v1/authenticate/resume", handlers.Authenticate.Resume)
	r.GET("/api/v1/authenticate/logout", handlers.Authenticate.ForgetMe)

	// Self-service routes
	r.POST("/api/v1/users/register", handlers.Users.Register)
	r.PUT("/api/v1/users/password", handlers.Users.ChangePassword)
	r.PUT("/api/v1/users/email", handlers.Users.ChangeEmail)

	// Provisioning the first tenant must work before any admin token exists,
	// so this route stays open
	r.POST("/api/v1/admin/applications", handlers.Admin.CreateApplication)

	// Administrative routes
	r.PUT("/api/v1/admin/accept", adminAuth(handlers.Admin.Accept))
	r.DELETE("/api/v1/admin/reject", adminAuth(handlers.Admin.Reject))
	r.GET("/api/v1/admin/waiting", adminAuth(handlers.Admin.Waiting))
	r.GET("/api/v1/admin/roles", adminAuth(handlers.Admin.Roles))

	return r
}
