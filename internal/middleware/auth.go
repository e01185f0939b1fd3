package middleware

import (
	"context"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/gisgate/backend/domain"
)

// TokenValidator resolves an admin token to its privileged owner.
type TokenValidator interface {
	ValidateAdminToken(ctx context.Context, application, token string) (*domain.User, error)
}

// AdminAuth guards administrative endpoints. The caller presents the rotating
// admin token minted at login together with the application it belongs to;
// tokens from other tenants never pass.
func AdminAuth(validator TokenValidator, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			token := extractToken(ctx)
			application := extractApplication(ctx)
			if token == "" || application == "" {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			user, err := validator.ValidateAdminToken(ctx, application, token)
			if err != nil {
				logger.Warn("rejected admin token",
					zap.String("application", application), zap.Error(err))
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			ctx.Request.Header.Set("X-User-ID", user.ID)
			ctx.Request.Header.Set("X-User-Email", user.Email)

			next(ctx)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	if header := string(ctx.Request.Header.Peek("X-Admin-Token")); header != "" {
		return header
	}
	header := string(ctx.Request.Header.Peek("Authorization"))
	return strings.TrimPrefix(header, "Bearer ")
}

func extractApplication(ctx *fasthttp.RequestCtx) string {
	if arg := string(ctx.QueryArgs().Peek("application")); arg != "" {
		return arg
	}
	return string(ctx.Request.Header.Peek("X-Application"))
}
