package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskview/api/transport"
	"github.com/fastygo/taskview/domain"
	"github.com/fastygo/taskview/pkg/httpcontext"
	authUC "github.com/fastygo/taskview/usecase/auth"
)

type AuthHandler struct {
	baseHandler
	uc *authUC.UseCase
}

func NewAuthHandler(uc *authUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Register a creator or executor
// @Tags auth
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.RegisterRequest
	if !h.decode(ctx, stdCtx, &req) {
		return
	}

	user, err := h.uc.Register(stdCtx, authUC.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusCreated, user)
}

// @Summary Log in with email and password
// @Tags auth
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.LoginRequest
	if !h.decode(ctx, stdCtx, &req) {
		return
	}

	result, err := h.uc.Login(stdCtx, req.Email, req.Password)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.LoginResponse{
		User:    result.User,
		Message: "Login successful",
		Token:   result.Token,
		Session: result.Session,
	})
}

// @Summary Extend a session
// @Tags auth
// @Router /api/auth/refresh [post]
func (h *AuthHandler) Refresh(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.RefreshRequest
	if !h.decodeOptional(ctx, stdCtx, &req) {
		return
	}

	session, err := h.uc.RefreshSession(stdCtx, httpcontext.ActorID(stdCtx), callerSession(stdCtx, req.SessionID), time.Duration(req.TTL)*time.Second)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, session)
}

// @Summary Revoke a session
// @Tags auth
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.LogoutRequest
	if !h.decodeOptional(ctx, stdCtx, &req) {
		return
	}
	if err := h.uc.RevokeSession(stdCtx, httpcontext.ActorID(stdCtx), callerSession(stdCtx, req.SessionID)); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondNoContent(ctx)
}

// @Summary Get a user by id
// @Tags users
// @Router /api/users/{userId} [get]
func (h *AuthHandler) GetUser(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.GetUser(stdCtx, pathParam(ctx, "userId"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, user)
}

func callerSession(ctx context.Context, requested string) string {
	if requested != "" {
		return requested
	}
	return httpcontext.SessionID(ctx)
}
