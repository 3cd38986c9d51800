package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskview/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Invite  *apiHandler.InviteHandler
	Task    *apiHandler.TaskHandler
	Health  *apiHandler.HealthHandler
}

// PublicPaths never need a token, even when authentication is required.
var PublicPaths = []string{
	"/health",
	"/api/health",
	"/api/auth/register",
	"/api/auth/login",
}

// Middleware wraps the whole route table.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

func New(handlers Handlers) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	api := r.Group("/api")
	api.GET("/health", handlers.Health.Check)

	api.POST("/auth/register", handlers.Auth.Register)
	api.POST("/auth/login", handlers.Auth.Login)
	api.POST("/auth/refresh", handlers.Auth.Refresh)
	api.POST("/auth/logout", handlers.Auth.Logout)
	api.GET("/users/{userId}", handlers.Auth.GetUser)

	api.GET("/profile", handlers.Profile.GetProfile)
	api.PUT("/profile", handlers.Profile.UpdateProfile)

	api.POST("/invites", handlers.Invite.Create)
	api.POST("/invites/use", handlers.Invite.Redeem)
	api.GET("/invites/executor/{executorId}", handlers.Invite.ListByExecutor)
	api.GET("/invites/{creatorId}", handlers.Invite.ListByCreator)
	api.GET("/invite/{inviteId}", handlers.Invite.Get)
	api.GET("/invite/{inviteId}/activity", handlers.Invite.Activity)

	api.POST("/tasks", handlers.Task.Create)
	api.GET("/tasks/{inviteId}", handlers.Task.ListByInvite)
	api.GET("/tasks/{inviteId}/board", handlers.Task.Board)
	api.PUT("/task/{taskId}", handlers.Task.Update)
	api.PUT("/task/{taskId}/status", handlers.Task.UpdateStatus)
	api.PUT("/task/{taskId}/assign", handlers.Task.Assign)
	api.DELETE("/task/{taskId}", handlers.Task.Delete)

	return r
}

// Handler builds the routes and applies middlewares, the first one outermost.
func Handler(handlers Handlers, middlewares ...Middleware) fasthttp.RequestHandler {
	h := New(handlers).Handler
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
