package handler

import (
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskview/api/transport"
	"github.com/fastygo/taskview/pkg/httpcontext"
	inviteUC "github.com/fastygo/taskview/usecase/invite"
)

type InviteHandler struct {
	baseHandler
	uc *inviteUC.UseCase
}

func NewInviteHandler(uc *inviteUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *InviteHandler {
	return &InviteHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Generate an invite code
// @Tags invites
// @Router /api/invites [post]
func (h *InviteHandler) Create(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.CreateInviteRequest
	if !h.decode(ctx, stdCtx, &req) {
		return
	}

	invite, err := h.uc.CreateInvite(stdCtx, httpcontext.ActorID(stdCtx), req.CreatorID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusCreated, invite)
}

// @Summary Redeem an invite code
// @Tags invites
// @Router /api/invites/use [post]
func (h *InviteHandler) Redeem(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.RedeemInviteRequest
	if !h.decode(ctx, stdCtx, &req) {
		return
	}

	invite, err := h.uc.RedeemInvite(stdCtx, httpcontext.ActorID(stdCtx), req.Code, req.ExecutorID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.RedeemResponse{
		Message: "Invite code used successfully",
		Invite:  invite,
	})
}

// @Summary Invites created by a creator
// @Tags invites
// @Router /api/invites/{creatorId} [get]
func (h *InviteHandler) ListByCreator(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	invites, err := h.uc.ListByCreator(stdCtx, pathParam(ctx, "creatorId"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.InviteList{Invites: invites})
}

// @Summary Invites redeemed by an executor
// @Tags invites
// @Router /api/invites/executor/{executorId} [get]
func (h *InviteHandler) ListByExecutor(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	invites, err := h.uc.ListByExecutor(stdCtx, pathParam(ctx, "executorId"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.InviteList{Invites: invites})
}

// @Summary Invite details
// @Tags invites
// @Router /api/invite/{inviteId} [get]
func (h *InviteHandler) Get(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	invite, err := h.uc.GetInvite(stdCtx, pathParam(ctx, "inviteId"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, invite)
}

// @Summary Activity log of an invite
// @Tags invites
// @Param limit query int false "max entries"
// @Router /api/invite/{inviteId}/activity [get]
func (h *InviteHandler) Activity(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	limit, _ := strconv.Atoi(string(ctx.QueryArgs().Peek("limit")))
	activities, err := h.uc.Activity(stdCtx, pathParam(ctx, "inviteId"), limit)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.ActivityList{Activities: activities})
}
