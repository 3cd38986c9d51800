package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/taskview/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
	KeyActorID    Key = "actor_id"
	KeySessionID  Key = "session_id"
)

const (
	headerRequestID = "X-Request-ID"
	headerUserID    = "X-User-ID"
	headerSessionID = "X-Session-ID"
)

// Adapter converts fasthttp.RequestCtx into a stdlib context with a deadline,
// request id and the authenticated actor.
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{timeout: timeout}
}

// Attach must be paired with a call to the returned cancel func.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)

	reqID := requestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)
	ctx.Response.Header.Set(headerRequestID, reqID)

	if actor := string(ctx.Request.Header.Peek(headerUserID)); actor != "" {
		stdCtx = context.WithValue(stdCtx, KeyActorID, actor)
	}
	if session := string(ctx.Request.Header.Peek(headerSessionID)); session != "" {
		stdCtx = context.WithValue(stdCtx, KeySessionID, session)
	}
	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}

	return stdCtx, cancel
}

// ActorID returns the authenticated user id, or "" for anonymous requests.
func ActorID(ctx context.Context) string {
	id, _ := ctx.Value(KeyActorID).(string)
	return id
}

// SessionID returns the login session behind the request's token, or "".
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(KeySessionID).(string)
	return id
}

func requestID(ctx *fasthttp.RequestCtx) string {
	if header := strings.TrimSpace(string(ctx.Request.Header.Peek(headerRequestID))); header != "" {
		return header
	}
	return uuid.NewString()
}
