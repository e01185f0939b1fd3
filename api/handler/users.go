package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/gisgate/backend/api/transport"
	"github.com/gisgate/backend/domain"
	"github.com/gisgate/backend/pkg/httpcontext"
	registerUC "github.com/gisgate/backend/usecase/register"
)

type UserHandler struct {
	baseHandler
	uc *registerUC.UseCase
}

func NewUserHandler(uc *registerUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Register a pending user
// @Tags users
// @Router /api/v1/users/register [post]
func (h *UserHandler) Register(ctx *fasthttp.RequestCtx) {
	var req transport.RegisterRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	access, err := parseAccessWindow(req.AccessStart, req.AccessEnd)
	if err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid access window", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.Register(stdCtx, registerUC.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Agency:      req.Agency,
		Password:    req.Password,
		Application: req.Application,
		Access:      access,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, user)
}

// @Summary Rotate a user's password
// @Tags users
// @Router /api/v1/users/password [put]
func (h *UserHandler) ChangePassword(ctx *fasthttp.RequestCtx) {
	var req transport.ChangePasswordRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	err := h.uc.ChangePassword(stdCtx, registerUC.ChangePasswordInput{
		Email:       req.Email,
		Application: req.Application,
		Current:     req.CurrentPassword,
		New:         req.NewPassword,
		NewRepeated: req.NewPasswordRepeated,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}

// @Summary Move an account to a new email address
// @Tags users
// @Router /api/v1/users/email [put]
func (h *UserHandler) ChangeEmail(ctx *fasthttp.RequestCtx) {
	var req transport.ChangeEmailRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	err := h.uc.ChangeEmail(stdCtx, registerUC.ChangeEmailInput{
		Email:       req.Email,
		NewEmail:    req.NewEmail,
		Password:    req.Password,
		Application: req.Application,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}

// parseAccessWindow accepts RFC 3339 timestamps or plain dates. Both bounds
// are optional.
func parseAccessWindow(start, end string) (*domain.AccessWindow, error) {
	if start == "" && end == "" {
		return nil, nil
	}
	window := &domain.AccessWindow{}
	if start != "" {
		ts, err := parseTimestamp(start)
		if err != nil {
			return nil, err
		}
		window.Start = ts
	}
	if end != "" {
		ts, err := parseTimestamp(end)
		if err != nil {
			return nil, err
		}
		window.End = ts
	}
	return window, nil
}

func parseTimestamp(value string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02", value)
}
