package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskview/domain"
	"github.com/fastygo/taskview/pkg/token"
)

// Identity headers are set only by this middleware; inbound values are dropped.
const (
	HeaderUserID    = "X-User-ID"
	HeaderRole      = "X-User-Role"
	HeaderSessionID = "X-Session-ID"
)

// TokenParser verifies a bearer token.
type TokenParser interface {
	Parse(raw string) (*token.Claims, error)
}

const sessionLookupTimeout = 2 * time.Second

// SessionLookup resolves the login session a token was issued for. It must
// report a missing or expired session as domain.ErrSessionNotFound.
type SessionLookup interface {
	GetSession(ctx context.Context, id string) (*domain.Session, error)
}

// Identity attaches the caller's identity from a bearer token. Requests
// without a token pass through anonymously unless required is set and the
// path is not listed in public. A token that is present but invalid is always
// rejected. With sessions set, the token's session must still exist and
// belong to the token's user, so a logout ends the token too.
func Identity(parser TokenParser, sessions SessionLookup, required bool, logger *zap.Logger, public ...string) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	open := make(map[string]struct{}, len(public))
	for _, p := range public {
		open[p] = struct{}{}
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			ctx.Request.Header.Del(HeaderUserID)
			ctx.Request.Header.Del(HeaderRole)
			ctx.Request.Header.Del(HeaderSessionID)

			if ctx.IsOptions() {
				next(ctx)
				return
			}

			raw := extractToken(ctx)
			if raw == "" {
				if _, ok := open[string(ctx.Path())]; required && !ok {
					unauthorized(ctx)
					return
				}
				next(ctx)
				return
			}

			claims, err := parser.Parse(raw)
			if err != nil {
				logger.Warn("invalid jwt token", zap.Error(err))
				unauthorized(ctx)
				return
			}
			if sessions != nil && !sessionActive(sessions, claims, logger) {
				unauthorized(ctx)
				return
			}

			ctx.Request.Header.Set(HeaderUserID, claims.UserID)
			ctx.Request.Header.Set(HeaderRole, string(claims.Role))
			if claims.SessionID != "" {
				ctx.Request.Header.Set(HeaderSessionID, claims.SessionID)
			}
			next(ctx)
		}
	}
}

// UserID returns the identity attached by Identity, or "".
func UserID(ctx *fasthttp.RequestCtx) string {
	return string(ctx.Request.Header.Peek(HeaderUserID))
}

func sessionActive(sessions SessionLookup, claims *token.Claims, logger *zap.Logger) bool {
	if claims.SessionID == "" {
		logger.Warn("token without session rejected", zap.String("user_id", claims.UserID))
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), sessionLookupTimeout)
	defer cancel()
	session, err := sessions.GetSession(ctx, claims.SessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			logger.Error("session lookup failed", zap.String("session_id", claims.SessionID), zap.Error(err))
		}
		return false
	}
	return session.UserID == claims.UserID
}

func unauthorized(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	ctx.SetContentType("application/json")
	ctx.SetBodyString(`{"code":"UNAUTHORIZED","message":"unauthorized"}`)
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
