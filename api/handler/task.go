package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskview/api/transport"
	"github.com/fastygo/taskview/domain"
	"github.com/fastygo/taskview/pkg/httpcontext"
	taskUC "github.com/fastygo/taskview/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Create a task on an invite
// @Tags tasks
// @Router /api/tasks [post]
func (h *TaskHandler) Create(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.CreateTaskRequest
	if !h.decode(ctx, stdCtx, &req) {
		return
	}

	task, err := h.uc.CreateTask(stdCtx, httpcontext.ActorID(stdCtx), taskUC.CreateInput{
		CreatorID:   req.CreatorID,
		InviteID:    req.InviteID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusCreated, task)
}

// @Summary Tasks of an invite, oldest first
// @Tags tasks
// @Router /api/tasks/{inviteId} [get]
func (h *TaskHandler) ListByInvite(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListByInvite(stdCtx, pathParam(ctx, "inviteId"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.TaskList{Tasks: tasks})
}

// @Summary Tasks of an invite grouped by status
// @Tags tasks
// @Router /api/tasks/{inviteId}/board [get]
func (h *TaskHandler) Board(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	board, err := h.uc.Board(stdCtx, pathParam(ctx, "inviteId"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, board)
}

// @Summary Partially update a task
// @Tags tasks
// @Router /api/task/{taskId} [put]
func (h *TaskHandler) Update(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.UpdateTaskRequest
	if !h.decode(ctx, stdCtx, &req) {
		return
	}

	in := taskUC.UpdateInput{
		Title:             req.Title,
		Description:       req.Description,
		ExecutorID:        req.ExecutorID.OrEmpty(),
		CompletionDetails: req.CompletionDetails,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		in.Status = &status
	}

	task, err := h.uc.UpdateTask(stdCtx, httpcontext.ActorID(stdCtx), pathParam(ctx, "taskId"), in)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, task)
}

// @Summary Move a task to another status
// @Tags tasks
// @Router /api/task/{taskId}/status [put]
func (h *TaskHandler) UpdateStatus(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.UpdateStatusRequest
	if !h.decode(ctx, stdCtx, &req) {
		return
	}

	task, err := h.uc.UpdateStatus(stdCtx, httpcontext.ActorID(stdCtx), pathParam(ctx, "taskId"),
		domain.TaskStatus(req.Status), req.CompletionDetails)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, task)
}

// @Summary Assign or unassign the bound executor
// @Tags tasks
// @Router /api/task/{taskId}/assign [put]
func (h *TaskHandler) Assign(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var req transport.AssignRequest
	if !h.decode(ctx, stdCtx, &req) {
		return
	}

	task, err := h.uc.AssignExecutor(stdCtx, httpcontext.ActorID(stdCtx), pathParam(ctx, "taskId"), req.ExecutorID)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, task)
}

// @Summary Delete a task
// @Tags tasks
// @Router /api/task/{taskId} [delete]
func (h *TaskHandler) Delete(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteTask(stdCtx, httpcontext.ActorID(stdCtx), pathParam(ctx, "taskId")); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondNoContent(ctx)
}
