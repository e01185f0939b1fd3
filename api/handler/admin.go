package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/gisgate/backend/api/transport"
	"github.com/gisgate/backend/domain"
	"github.com/gisgate/backend/pkg/httpcontext"
	adminUC "github.com/gisgate/backend/usecase/admin"
)

type AdminHandler struct {
	baseHandler
	uc *adminUC.UseCase
}

func NewAdminHandler(uc *adminUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Provision tenant configuration
// @Tags admin
// @Router /api/v1/admin/applications [post]
func (h *AdminHandler) CreateApplication(ctx *fasthttp.RequestCtx) {
	var req transport.CreateApplicationRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Application == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	err := h.uc.CreateApplication(stdCtx, &domain.TenantConfig{
		Application:          req.Application,
		AdministrativeEmails: req.AdminEmails,
		Description:          req.Description,
		Roles:                req.Roles,
		UsersCanExpire:       req.UsersCanExpire,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusCreated)
}

// @Summary Approve a pending user
// @Tags admin
// @Router /api/v1/admin/accept [put]
func (h *AdminHandler) Accept(ctx *fasthttp.RequestCtx) {
	var req transport.AcceptRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Email == "" || req.Application == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing parameters", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if _, err := h.uc.Accept(stdCtx, req.Application, req.Email, req.Roles); err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}

// @Summary Reject a pending user
// @Tags admin
// @Router /api/v1/admin/reject [delete]
func (h *AdminHandler) Reject(ctx *fasthttp.RequestCtx) {
	var req transport.RejectRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Email == "" || req.Application == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing parameters", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if _, err := h.uc.Reject(stdCtx, req.Application, req.Email); err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusAccepted)
}

// @Summary List undecided registrations
// @Tags admin
// @Router /api/v1/admin/waiting [get]
func (h *AdminHandler) Waiting(ctx *fasthttp.RequestCtx) {
	application := string(ctx.QueryArgs().Peek("application"))
	if application == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing application", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	users, err := h.uc.Waiting(stdCtx, application)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, users)
}

// @Summary Get the granted roles for a user
// @Tags admin
// @Router /api/v1/admin/roles [get]
func (h *AdminHandler) Roles(ctx *fasthttp.RequestCtx) {
	application := string(ctx.QueryArgs().Peek("application"))
	email := string(ctx.QueryArgs().Peek("email"))
	if application == "" || email == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing parameters", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	roles, err := h.uc.Roles(stdCtx, application, email)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, roles)
}
