package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskview/api/transport"
	"github.com/fastygo/taskview/domain"
	"github.com/fastygo/taskview/pkg/httpcontext"
	"github.com/fastygo/taskview/pkg/logger"
)

const internalMessage = "internal server error"

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if adapter == nil {
		adapter = httpcontext.NewAdapter(0)
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	return h.adapter.Attach(ctx)
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("encode response", zap.Error(err))
		ctx.SetStatusCode(http.StatusInternalServerError)
		body = []byte(`{"code":"INTERNAL","message":"internal server error"}`)
	}
	ctx.SetBody(body)
}

func (h baseHandler) respondNoContent(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(http.StatusNoContent)
}

// respondError writes the {"code","message"} body. Internal failures are
// logged and their details withheld from the client.
func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, reqCtx context.Context, err error) {
	status, code := mapError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.WithRequestID(reqCtx, h.logger).Error("request failed",
			zap.ByteString("path", ctx.Path()),
			zap.Error(err))
		message = internalMessage
	} else if dErr := domainMessage(err); dErr != "" {
		message = dErr
	}
	h.respondJSON(ctx, status, transport.NewError(code, message))
}

// decode parses and validates the body, answering 400 itself on failure.
func (h baseHandler) decode(ctx *fasthttp.RequestCtx, reqCtx context.Context, dst interface{}) bool {
	if err := transport.Decode(ctx.PostBody(), dst); err != nil {
		h.respondError(ctx, reqCtx, err)
		return false
	}
	return true
}

// decodeOptional is decode for endpoints whose fields all have defaults; an
// empty body leaves dst zeroed.
func (h baseHandler) decodeOptional(ctx *fasthttp.RequestCtx, reqCtx context.Context, dst interface{}) bool {
	if len(ctx.PostBody()) == 0 {
		return true
	}
	return h.decode(ctx, reqCtx, dst)
}

func pathParam(ctx *fasthttp.RequestCtx, name string) string {
	v, _ := ctx.UserValue(name).(string)
	return v
}

func mapError(err error) (int, domain.ErrorCode) {
	code := domain.CodeOf(err)
	switch code {
	case domain.ErrCodeUnauthorized:
		return http.StatusUnauthorized, code
	case domain.ErrCodeForbidden:
		return http.StatusForbidden, code
	case domain.ErrCodeInvalid:
		return http.StatusBadRequest, code
	case domain.ErrCodeNotFound:
		return http.StatusNotFound, code
	case domain.ErrCodeConflict:
		return http.StatusConflict, code
	default:
		return http.StatusInternalServerError, domain.ErrCodeInternal
	}
}

// domainMessage drops wrapped driver detail so clients see only the domain
// message.
func domainMessage(err error) string {
	var dErr *domain.Error
	if !errors.As(err, &dErr) {
		return ""
	}
	return dErr.Message
}
