package handler_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"golang.org/x/crypto/bcrypt"

	apiHandler "github.com/fastygo/taskview/api/handler"
	"github.com/fastygo/taskview/domain"
	"github.com/fastygo/taskview/internal/infrastructure/monitor"
	"github.com/fastygo/taskview/internal/middleware"
	"github.com/fastygo/taskview/internal/router"
	"github.com/fastygo/taskview/internal/services"
	"github.com/fastygo/taskview/pkg/httpcontext"
	"github.com/fastygo/taskview/pkg/token"
	"github.com/fastygo/taskview/repository/memory"
	authUC "github.com/fastygo/taskview/usecase/auth"
	inviteUC "github.com/fastygo/taskview/usecase/invite"
	profileUC "github.com/fastygo/taskview/usecase/profile"
	taskUC "github.com/fastygo/taskview/usecase/task"
)

type api struct {
	t       *testing.T
	handler fasthttp.RequestHandler
}

type response struct {
	status int
	body   []byte
}

func (r response) decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.body, v), string(r.body))
}

func (r response) errorCode(t *testing.T) string {
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	r.decode(t, &body)
	assert.NotEmpty(t, body.Message)
	return body.Code
}

func newAPI(t *testing.T, mon *monitor.Monitor) *api {
	store := memory.NewStore()
	issuer := token.NewIssuer("secret", "taskview", time.Hour)
	recorder := services.NewActivityRecorder(store.Activities(), nil)
	adapter := httpcontext.NewAdapter(time.Second)
	if mon == nil {
		mon = monitor.New(time.Minute, nil)
		mon.Refresh(context.Background())
	}

	auth := authUC.New(store.Users(), store.Sessions(), issuer, time.Hour, nil).WithHashCost(bcrypt.MinCost)
	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(auth, adapter, nil),
		Profile: apiHandler.NewProfileHandler(profileUC.New(store.Users(), nil), adapter, nil),
		Invite:  apiHandler.NewInviteHandler(inviteUC.New(store.Invites(), store.Users(), store.Activities(), recorder, nil), adapter, nil),
		Task:    apiHandler.NewTaskHandler(taskUC.New(store.Tasks(), store.Invites(), recorder, nil), adapter, nil),
		Health:  apiHandler.NewHealthHandler(mon, adapter, nil),
	}
	return &api{
		t: t,
		handler: router.Handler(handlers,
			middleware.CORS("*"),
			middleware.Identity(issuer, auth, false, nil, router.PublicPaths...),
		),
	}
}

func (a *api) do(method, path string, body interface{}, bearer string) response {
	a.t.Helper()
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if bearer != "" {
		ctx.Request.Header.Set("Authorization", "Bearer "+bearer)
	}
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		ctx.Request.Header.SetContentType("application/json")
		ctx.Request.SetBody(raw)
	}
	a.handler(ctx)
	return response{status: ctx.Response.StatusCode(), body: append([]byte(nil), ctx.Response.Body()...)}
}

func (a *api) register(name, role string) domain.User {
	a.t.Helper()
	res := a.do("POST", "/api/auth/register", map[string]string{
		"username": name,
		"email":    name + "@taskview.test",
		"password": "secret1",
		"role":     role,
	}, "")
	require.Equal(a.t, fasthttp.StatusCreated, res.status, string(res.body))
	var user domain.User
	res.decode(a.t, &user)
	return user
}

func (a *api) login(name string) string {
	a.t.Helper()
	raw, _ := a.loginSession(name)
	return raw
}

func (a *api) loginSession(name string) (string, string) {
	a.t.Helper()
	res := a.do("POST", "/api/auth/login", map[string]string{
		"email":    name + "@taskview.test",
		"password": "secret1",
	}, "")
	require.Equal(a.t, fasthttp.StatusOK, res.status, string(res.body))
	var body struct {
		Token   string         `json:"token"`
		Message string         `json:"message"`
		Session domain.Session `json:"session"`
	}
	res.decode(a.t, &body)
	require.NotEmpty(a.t, body.Token)
	require.NotEmpty(a.t, body.Session.ID)
	return body.Token, body.Session.ID
}

func TestInviteAndTaskFlow(t *testing.T) {
	a := newAPI(t, nil)
	alice := a.register("alice", "creator")
	bob := a.register("bob", "executor")

	res := a.do("POST", "/api/invites", map[string]string{"creator_id": alice.ID}, "")
	require.Equal(t, fasthttp.StatusCreated, res.status, string(res.body))
	var invite domain.Invite
	res.decode(t, &invite)
	assert.Equal(t, domain.InviteStatusPending, invite.Status)

	res = a.do("POST", "/api/invites/use", map[string]string{"code": invite.Code, "executor_id": bob.ID}, "")
	require.Equal(t, fasthttp.StatusOK, res.status, string(res.body))
	var redeemed struct {
		Message string        `json:"message"`
		Invite  domain.Invite `json:"invite"`
	}
	res.decode(t, &redeemed)
	assert.Equal(t, bob.ID, redeemed.Invite.BoundExecutor())
	assert.NotEmpty(t, redeemed.Message)

	res = a.do("POST", "/api/invites/use", map[string]string{"code": invite.Code, "executor_id": bob.ID}, "")
	assert.Equal(t, fasthttp.StatusConflict, res.status)
	assert.Equal(t, "CONFLICT", res.errorCode(t))

	res = a.do("GET", "/api/invites/"+alice.ID, nil, "")
	require.Equal(t, fasthttp.StatusOK, res.status)
	var byCreator struct {
		Invites []domain.Invite `json:"invites"`
	}
	res.decode(t, &byCreator)
	assert.Len(t, byCreator.Invites, 1)

	res = a.do("GET", "/api/invites/executor/"+bob.ID, nil, "")
	require.Equal(t, fasthttp.StatusOK, res.status)
	var byExecutor struct {
		Invites []domain.Invite `json:"invites"`
	}
	res.decode(t, &byExecutor)
	require.Len(t, byExecutor.Invites, 1)
	assert.Equal(t, invite.ID, byExecutor.Invites[0].ID)

	res = a.do("POST", "/api/tasks", map[string]string{
		"title":      "Write report",
		"creator_id": alice.ID,
		"invite_id":  invite.ID,
	}, "")
	require.Equal(t, fasthttp.StatusCreated, res.status, string(res.body))
	var task domain.Task
	res.decode(t, &task)
	assert.Equal(t, domain.TaskStatusTodo, task.Status)
	require.NotNil(t, task.ExecutorID)
	assert.Equal(t, bob.ID, *task.ExecutorID)

	res = a.do("PUT", "/api/task/"+task.ID+"/status", map[string]string{"status": "done"}, "")
	assert.Equal(t, fasthttp.StatusBadRequest, res.status)
	assert.Equal(t, "INVALID", res.errorCode(t))

	res = a.do("PUT", "/api/task/"+task.ID+"/status", map[string]string{"status": "done", "completion_details": "sent"}, "")
	require.Equal(t, fasthttp.StatusOK, res.status, string(res.body))
	res.decode(t, &task)
	assert.Equal(t, "sent", *task.CompletionDetails)

	res = a.do("GET", "/api/tasks/"+invite.ID+"/board", nil, "")
	require.Equal(t, fasthttp.StatusOK, res.status)
	var board domain.Board
	res.decode(t, &board)
	assert.Len(t, board.Done, 1)
	assert.Empty(t, board.Todo)

	res = a.do("PUT", "/api/task/"+task.ID+"/assign", map[string]interface{}{"executor_id": nil}, "")
	require.Equal(t, fasthttp.StatusOK, res.status)
	res.decode(t, &task)
	assert.Nil(t, task.ExecutorID)

	res = a.do("PUT", "/api/task/"+task.ID, map[string]string{"title": "Final report"}, "")
	require.Equal(t, fasthttp.StatusOK, res.status)
	res.decode(t, &task)
	assert.Equal(t, "Final report", task.Title)

	res = a.do("GET", "/api/invite/"+invite.ID+"/activity", nil, "")
	require.Equal(t, fasthttp.StatusOK, res.status)
	var activity struct {
		Activities []domain.Activity `json:"activities"`
	}
	res.decode(t, &activity)
	assert.GreaterOrEqual(t, len(activity.Activities), 5)

	res = a.do("DELETE", "/api/task/"+task.ID, nil, "")
	assert.Equal(t, fasthttp.StatusNoContent, res.status)

	res = a.do("GET", "/api/tasks/"+invite.ID, nil, "")
	require.Equal(t, fasthttp.StatusOK, res.status)
	var list struct {
		Tasks []domain.Task `json:"tasks"`
	}
	res.decode(t, &list)
	assert.NotNil(t, list.Tasks)
	assert.Empty(t, list.Tasks)
}

func TestErrorMapping(t *testing.T) {
	a := newAPI(t, nil)
	alice := a.register("alice", "creator")
	bob := a.register("bob", "executor")

	res := a.do("POST", "/api/invites/use", map[string]string{"code": "NOPE2345", "executor_id": bob.ID}, "")
	assert.Equal(t, fasthttp.StatusNotFound, res.status)
	assert.Equal(t, "NOT_FOUND", res.errorCode(t))

	res = a.do("POST", "/api/invites", map[string]string{"creator_id": bob.ID}, "")
	assert.Equal(t, fasthttp.StatusBadRequest, res.status)

	res = a.do("POST", "/api/invites", map[string]string{}, "")
	assert.Equal(t, fasthttp.StatusBadRequest, res.status)
	assert.Equal(t, "INVALID", res.errorCode(t))

	res = a.do("GET", "/api/invite/missing", nil, "")
	assert.Equal(t, fasthttp.StatusNotFound, res.status)

	res = a.do("GET", "/api/users/"+alice.ID, nil, "")
	require.Equal(t, fasthttp.StatusOK, res.status)
	assert.NotContains(t, string(res.body), "password")

	res = a.do("DELETE", "/api/task/missing", nil, "")
	assert.Equal(t, fasthttp.StatusNotFound, res.status)

	res = a.do("POST", "/api/auth/register", map[string]string{
		"username": "dup", "email": "alice@taskview.test", "password": "secret1", "role": "creator",
	}, "")
	assert.Equal(t, fasthttp.StatusConflict, res.status)

	res = a.do("POST", "/api/auth/login", map[string]string{"email": "alice@taskview.test", "password": "wrong!"}, "")
	assert.Equal(t, fasthttp.StatusUnauthorized, res.status)
	assert.Equal(t, "UNAUTHORIZED", res.errorCode(t))
}

func TestAuthenticatedPermissions(t *testing.T) {
	a := newAPI(t, nil)
	alice := a.register("alice", "creator")
	bob := a.register("bob", "executor")
	a.register("carol", "executor")
	aliceToken := a.login("alice")
	bobToken := a.login("bob")
	carolToken := a.login("carol")

	res := a.do("POST", "/api/invites", map[string]string{"creator_id": alice.ID}, bobToken)
	assert.Equal(t, fasthttp.StatusForbidden, res.status)
	assert.Equal(t, "FORBIDDEN", res.errorCode(t))

	res = a.do("POST", "/api/invites", map[string]string{"creator_id": alice.ID}, aliceToken)
	require.Equal(t, fasthttp.StatusCreated, res.status)
	var invite domain.Invite
	res.decode(t, &invite)

	res = a.do("POST", "/api/invites/use", map[string]string{"code": invite.Code, "executor_id": bob.ID}, bobToken)
	require.Equal(t, fasthttp.StatusOK, res.status)

	res = a.do("POST", "/api/tasks", map[string]string{"title": "t", "creator_id": alice.ID, "invite_id": invite.ID}, aliceToken)
	require.Equal(t, fasthttp.StatusCreated, res.status)
	var task domain.Task
	res.decode(t, &task)

	res = a.do("PUT", "/api/task/"+task.ID+"/status", map[string]string{"status": "in_progress"}, bobToken)
	assert.Equal(t, fasthttp.StatusOK, res.status)

	res = a.do("PUT", "/api/task/"+task.ID+"/status", map[string]string{"status": "todo"}, carolToken)
	assert.Equal(t, fasthttp.StatusForbidden, res.status)

	res = a.do("DELETE", "/api/task/"+task.ID, nil, bobToken)
	assert.Equal(t, fasthttp.StatusForbidden, res.status)

	res = a.do("GET", "/api/profile", nil, "")
	assert.Equal(t, fasthttp.StatusUnauthorized, res.status)

	res = a.do("PUT", "/api/profile", map[string]string{"username": "Alice"}, aliceToken)
	require.Equal(t, fasthttp.StatusOK, res.status)
	var me domain.User
	res.decode(t, &me)
	assert.Equal(t, "Alice", me.Username)

	res = a.do("GET", "/api/profile", nil, "not-a-token")
	assert.Equal(t, fasthttp.StatusUnauthorized, res.status)
}

func TestHealth(t *testing.T) {
	healthy := newAPI(t, nil)
	for _, path := range []string{"/health", "/api/health"} {
		res := healthy.do("GET", path, nil, "")
		assert.Equal(t, fasthttp.StatusOK, res.status, path)
		assert.Contains(t, string(res.body), "ok")
	}

	mon := monitor.New(time.Minute, nil)
	mon.Add("postgresql", func(ctx context.Context) error { return assert.AnError })
	mon.Refresh(context.Background())
	degraded := newAPI(t, mon)
	res := degraded.do("GET", "/api/health", nil, "")
	assert.Equal(t, fasthttp.StatusServiceUnavailable, res.status)
	assert.Contains(t, string(res.body), "postgresql")
}

func TestLogoutEndsToken(t *testing.T) {
	a := newAPI(t, nil)
	alice := a.register("alice", "creator")
	aliceToken, aliceSession := a.loginSession("alice")

	res := a.do("GET", "/api/profile", nil, aliceToken)
	require.Equal(t, fasthttp.StatusOK, res.status)

	res = a.do("POST", "/api/auth/refresh", nil, aliceToken)
	require.Equal(t, fasthttp.StatusOK, res.status, string(res.body))
	var refreshed domain.Session
	res.decode(t, &refreshed)
	assert.Equal(t, aliceSession, refreshed.ID)
	assert.Equal(t, alice.ID, refreshed.UserID)

	res = a.do("POST", "/api/auth/logout", nil, aliceToken)
	require.Equal(t, fasthttp.StatusNoContent, res.status, string(res.body))

	res = a.do("GET", "/api/profile", nil, aliceToken)
	assert.Equal(t, fasthttp.StatusUnauthorized, res.status)
	res = a.do("POST", "/api/invites", map[string]string{"creator_id": alice.ID}, aliceToken)
	assert.Equal(t, fasthttp.StatusUnauthorized, res.status)

	freshToken := a.login("alice")
	res = a.do("GET", "/api/profile", nil, freshToken)
	assert.Equal(t, fasthttp.StatusOK, res.status)
}

func TestSessionEndpointsRequireOwner(t *testing.T) {
	a := newAPI(t, nil)
	a.register("alice", "creator")
	a.register("bob", "executor")
	aliceToken, aliceSession := a.loginSession("alice")
	bobToken := a.login("bob")

	res := a.do("POST", "/api/auth/logout", map[string]string{"session_id": aliceSession}, "")
	assert.Equal(t, fasthttp.StatusUnauthorized, res.status)
	res = a.do("POST", "/api/auth/refresh", map[string]string{"session_id": aliceSession}, "")
	assert.Equal(t, fasthttp.StatusUnauthorized, res.status)

	res = a.do("POST", "/api/auth/logout", map[string]string{"session_id": aliceSession}, bobToken)
	assert.Equal(t, fasthttp.StatusForbidden, res.status)
	res = a.do("POST", "/api/auth/refresh", map[string]string{"session_id": aliceSession}, bobToken)
	assert.Equal(t, fasthttp.StatusForbidden, res.status)

	res = a.do("GET", "/api/profile", nil, aliceToken)
	assert.Equal(t, fasthttp.StatusOK, res.status)
}

func TestUpdateTaskExecutorNullUnassigns(t *testing.T) {
	a := newAPI(t, nil)
	alice := a.register("alice", "creator")
	bob := a.register("bob", "executor")

	res := a.do("POST", "/api/invites", map[string]string{"creator_id": alice.ID}, "")
	require.Equal(t, fasthttp.StatusCreated, res.status)
	var invite domain.Invite
	res.decode(t, &invite)
	res = a.do("POST", "/api/invites/use", map[string]string{"code": invite.Code, "executor_id": bob.ID}, "")
	require.Equal(t, fasthttp.StatusOK, res.status)

	res = a.do("POST", "/api/tasks", map[string]string{"title": "t", "creator_id": alice.ID, "invite_id": invite.ID}, "")
	require.Equal(t, fasthttp.StatusCreated, res.status)
	var task domain.Task
	res.decode(t, &task)
	require.NotNil(t, task.ExecutorID)

	res = a.do("PUT", "/api/task/"+task.ID, map[string]string{"title": "renamed"}, "")
	require.Equal(t, fasthttp.StatusOK, res.status)
	res.decode(t, &task)
	require.NotNil(t, task.ExecutorID, "an absent executor_id leaves the executor alone")

	res = a.do("PUT", "/api/task/"+task.ID, map[string]interface{}{"executor_id": nil}, "")
	require.Equal(t, fasthttp.StatusOK, res.status, string(res.body))
	var cleared domain.Task
	res.decode(t, &cleared)
	assert.Nil(t, cleared.ExecutorID)
	assert.Equal(t, "renamed", cleared.Title)

	res = a.do("PUT", "/api/task/"+task.ID, map[string]interface{}{"executor_id": bob.ID}, "")
	require.Equal(t, fasthttp.StatusOK, res.status)
	var reassigned domain.Task
	res.decode(t, &reassigned)
	require.NotNil(t, reassigned.ExecutorID)
	assert.Equal(t, bob.ID, *reassigned.ExecutorID)
}
