package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/gisgate/backend/api/transport"
	"github.com/gisgate/backend/domain"
	"github.com/gisgate/backend/pkg/httpcontext"
	authnUC "github.com/gisgate/backend/usecase/authn"
)

// TicketCookie names the cookie carrying the session-continuation ticket.
const TicketCookie = "gisgate_ticket"

type AuthenticateHandler struct {
	baseHandler
	uc *authnUC.UseCase
}

func NewAuthenticateHandler(uc *authnUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthenticateHandler {
	return &AuthenticateHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Authenticate a user and mint a downstream token
// @Tags authenticate
// @Router /api/v1/authenticate/login [post]
func (h *AuthenticateHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Email == "" || req.Application == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	artifact, err := h.uc.Login(stdCtx, authnUC.LoginInput{
		Email:       req.Email,
		Password:    req.Password,
		Application: req.Application,
		Persist:     req.Persist,
	})
	if err != nil {
		// never reveal whether the email exists: a missing user answers
		// exactly like a wrong password
		if errors.Is(err, domain.ErrUserNotFound) {
			err = domain.ErrInvalidCredentials
		}
		h.respondError(ctx, err)
		return
	}

	if artifact.Ticket != "" {
		h.setTicketCookie(ctx, artifact.Ticket, req.Persist)
	}
	h.respondSuccess(ctx, http.StatusOK, artifact)
}

// @Summary Re-authenticate from a continuation ticket
// @Tags authenticate
// @Router /api/v1/authenticate/resume [get]
func (h *AuthenticateHandler) Resume(ctx *fasthttp.RequestCtx) {
	application := string(ctx.QueryArgs().Peek("application"))
	opaque := string(ctx.Request.Header.Cookie(TicketCookie))
	if application == "" || opaque == "" {
		h.respondError(ctx, domain.ErrTicketInvalid)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	artifact, err := h.uc.Resume(stdCtx, opaque, application)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			err = domain.ErrTicketInvalid
		}
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, artifact)
}

// @Summary Revoke the continuation ticket
// @Tags authenticate
// @Router /api/v1/authenticate/logout [get]
func (h *AuthenticateHandler) ForgetMe(ctx *fasthttp.RequestCtx) {
	opaque := string(ctx.Request.Header.Cookie(TicketCookie))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if opaque != "" {
		if err := h.uc.Revoke(stdCtx, opaque); err != nil {
			h.logger.Warn("failed to revoke continuation session", zap.Error(err))
		}
	}

	expired := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(expired)
	expired.SetKey(TicketCookie)
	expired.SetValue("")
	expired.SetMaxAge(-1)
	expired.SetHTTPOnly(true)
	expired.SetPath("/")
	ctx.Response.Header.SetCookie(expired)

	ctx.SetStatusCode(http.StatusNoContent)
}

func (h *AuthenticateHandler) setTicketCookie(ctx *fasthttp.RequestCtx, opaque string, persist bool) {
	cookie := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(cookie)
	cookie.SetKey(TicketCookie)
	cookie.SetValue(opaque)
	cookie.SetHTTPOnly(true)
	cookie.SetPath("/")
	if persist {
		cookie.SetMaxAge(int(h.uc.PersistentTTL().Seconds()))
	}
	ctx.Response.Header.SetCookie(cookie)
}
