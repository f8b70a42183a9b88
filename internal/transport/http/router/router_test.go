package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gin-gorm-messenger/internal/core/auth"
	"go-gin-gorm-messenger/internal/repo"
	"go-gin-gorm-messenger/internal/service"
	"go-gin-gorm-messenger/internal/testutil"
	"go-gin-gorm-messenger/internal/transport/http/router"
)

const (
	strongPw   = "Passw0rd!"
	adminEmail = "admin@example.com"
	adminPw    = "Adm1n!pass"
)

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type env struct {
	api   http.Handler
	admin http.Handler
	users *repo.UserRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.OpenDB(t)
	users, roles, msgs := repo.NewUserRepo(db), repo.NewRoleRepo(db), repo.NewMessageRepo(db)

	seeder := service.NewSeeder(users, roles, nil)
	require.NoError(t, seeder.Seed(context.Background(), service.AdminAccount{
		Username: "admin", Email: adminEmail, Password: adminPw,
	}))

	j, err := auth.NewJWTer("router-test-secret", "HS256", "messenger", 0)
	require.NoError(t, err)
	authz := service.NewAuthorizer(roles)
	messages := service.NewMessageService(msgs, authz, nil)
	d := router.Deps{
		JWT:      j,
		Identity: service.NewIdentityResolver(users),
		Accounts: service.NewAccountService(users, authz, j),
		Messages: messages,
		Admin:    service.NewAdminService(users, authz, messages),
	}
	return &env{api: router.NewAPIEngine(d), admin: router.NewAdminEngine(d), users: users}
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var out envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w.Code, out
}

func (e *env) register(t *testing.T, name string) {
	t.Helper()
	code, body := do(t, e.api, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": name, "email": name + "@example.com", "password": strongPw,
	})
	require.Equal(t, http.StatusOK, code, body.Msg)
}

func (e *env) login(t *testing.T, email, pw string) string {
	t.Helper()
	code, body := do(t, e.api, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": pw})
	require.Equal(t, http.StatusOK, code, body.Msg)
	var res service.LoginResult
	require.NoError(t, json.Unmarshal(body.Data, &res))
	assert.Equal(t, "bearer", res.TokenType)
	return res.AccessToken
}

func TestHealthAndMetrics(t *testing.T) {
	e := newEnv(t)
	for _, h := range []http.Handler{e.api, e.admin} {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

		req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
		w = httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "http_requests_total")
	}
}

func TestRegisterValidation(t *testing.T) {
	e := newEnv(t)
	cases := []struct {
		name string
		body gin.H
	}{
		{"weak password", gin.H{"username": "alice", "email": "alice@example.com", "password": "password"}},
		{"no special char", gin.H{"username": "alice", "email": "alice@example.com", "password": "Passw0rdd"}},
		{"short username", gin.H{"username": "al", "email": "alice@example.com", "password": strongPw}},
		{"bad email", gin.H{"username": "alice", "email": "not-an-email", "password": strongPw}},
		{"missing fields", gin.H{}},
		{"password too long", gin.H{"username": "alice", "email": "alice@example.com", "password": strongPw + strings.Repeat("a", 64)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := do(t, e.api, http.MethodPost, "/api/v1/auth/register", "", tc.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, 400, body.Code)
		})
	}
}

func TestRegisterPasswordLengthMessage(t *testing.T) {
	e := newEnv(t)
	pw := strongPw + strings.Repeat("a", 64)
	code, body := do(t, e.api, http.MethodPost, "/api/v1/auth/register", "",
		gin.H{"username": "alice", "email": "alice@example.com", "password": pw})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body.Msg, "at most 72")
}

func TestRegisterDuplicateAndLoginDenials(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice")

	code, body := do(t, e.api, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "alice2", "email": "alice@example.com", "password": strongPw,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "email already registered", body.Msg)

	c1, b1 := do(t, e.api, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "ghost@example.com", "password": strongPw})
	c2, b2 := do(t, e.api, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "alice@example.com", "password": "Wr0ng!pass"})
	assert.Equal(t, http.StatusUnauthorized, c1)
	assert.Equal(t, c1, c2)
	assert.Equal(t, b1, b2)
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice")
	tok := e.login(t, "alice@example.com", strongPw)

	code, _ := do(t, e.api, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = do(t, e.api, http.MethodGet, "/api/v1/users/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	tampered := []byte(tok)
	last := len(tampered) - 2
	if tampered[last] == 'A' {
		tampered[last] = 'B'
	} else {
		tampered[last] = 'A'
	}
	code, _ = do(t, e.api, http.MethodGet, "/api/v1/users/me", string(tampered), nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := do(t, e.api, http.MethodGet, "/api/v1/users/me", tok, nil)
	require.Equal(t, http.StatusOK, code)
	var p service.Profile
	require.NoError(t, json.Unmarshal(body.Data, &p))
	assert.Equal(t, "alice", p.Username)
	require.Len(t, p.Roles, 1)
	assert.Equal(t, "user", p.Roles[0].Name)
}

func TestDeletedUserTokenRejected(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice")
	tok := e.login(t, "alice@example.com", strongPw)

	u, err := e.users.FindByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.NoError(t, e.users.Delete(context.Background(), u.ID))

	code, _ := do(t, e.api, http.MethodGet, "/api/v1/users/me", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestMessageOwnership(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice")
	e.register(t, "bob")
	alice := e.login(t, "alice@example.com", strongPw)
	bob := e.login(t, "bob@example.com", strongPw)
	admin := e.login(t, adminEmail, adminPw)

	code, body := do(t, e.api, http.MethodPost, "/api/v1/messages", alice, gin.H{"content": "hi"})
	assert.Equal(t, http.StatusBadRequest, code, "content shorter than 4 chars")

	code, body = do(t, e.api, http.MethodPost, "/api/v1/messages", alice, gin.H{"content": "hello everyone"})
	require.Equal(t, http.StatusOK, code, body.Msg)
	var m struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &m))

	code, _ = do(t, e.api, http.MethodPut, "/api/v1/messages/"+itoa(m.ID), alice, gin.H{"content": "edited by alice"})
	assert.Equal(t, http.StatusOK, code)

	code, body = do(t, e.api, http.MethodPut, "/api/v1/messages/"+itoa(m.ID), bob, gin.H{"content": "edited by bob"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, 403, body.Code)

	code, _ = do(t, e.api, http.MethodDelete, "/api/v1/messages/"+itoa(m.ID), bob, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = do(t, e.api, http.MethodPut, "/api/v1/messages/999", alice, gin.H{"content": "nobody home"})
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, e.api, http.MethodDelete, "/api/v1/messages/abc", alice, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = do(t, e.api, http.MethodGet, "/api/v1/messages", bob, nil)
	require.Equal(t, http.StatusOK, code)
	var list []struct {
		Username string `json:"username"`
		Content  string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "alice", list[0].Username)
	assert.Equal(t, "edited by alice", list[0].Content)

	code, _ = do(t, e.api, http.MethodDelete, "/api/v1/messages/"+itoa(m.ID), admin, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAccountUpdates(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice")
	e.register(t, "bob")
	alice := e.login(t, "alice@example.com", strongPw)

	code, _ := do(t, e.api, http.MethodPut, "/api/v1/users/email", alice, gin.H{"new_email": "bob@example.com"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, e.api, http.MethodPut, "/api/v1/users/email", alice, gin.H{"new_email": "alice@new.io"})
	assert.Equal(t, http.StatusOK, code)

	// token 的 sub 仍是旧邮箱，改邮箱后需要重新登录
	code, _ = do(t, e.api, http.MethodGet, "/api/v1/users/me", alice, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	alice = e.login(t, "alice@new.io", strongPw)

	code, body := do(t, e.api, http.MethodPut, "/api/v1/users/password", alice, gin.H{
		"old_password": "Wr0ng!pass", "new_password": "N3w!passwd",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "incorrect old password", body.Msg)

	code, _ = do(t, e.api, http.MethodPut, "/api/v1/users/password", alice, gin.H{
		"old_password": strongPw, "new_password": "N3w!passwd",
	})
	assert.Equal(t, http.StatusOK, code)
	e.login(t, "alice@new.io", "N3w!passwd")
}

func TestAdminEngine(t *testing.T) {
	e := newEnv(t)
	e.register(t, "alice")
	alice := e.login(t, "alice@example.com", strongPw)
	admin := e.login(t, adminEmail, adminPw)

	code, _ := do(t, e.admin, http.MethodGet, "/admin/v1/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = do(t, e.admin, http.MethodGet, "/admin/v1/users", alice, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body := do(t, e.admin, http.MethodGet, "/admin/v1/users?limit=10&q=alice", admin, nil)
	require.Equal(t, http.StatusOK, code)
	var page struct {
		Total int64 `json:"total"`
		Items []struct {
			ID       uint   `json:"id"`
			Username string `json:"username"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &page))
	require.EqualValues(t, 1, page.Total)
	assert.NotContains(t, string(body.Data), "password")
	aliceID := itoa(page.Items[0].ID)

	code, _ = do(t, e.admin, http.MethodPut, "/admin/v1/users/"+aliceID+"/password", admin, gin.H{"new_password": "Res3t!pass"})
	assert.Equal(t, http.StatusOK, code)
	alice = e.login(t, "alice@example.com", "Res3t!pass")

	code, body = do(t, e.api, http.MethodPost, "/api/v1/messages", alice, gin.H{"content": "moderate me"})
	require.Equal(t, http.StatusOK, code)
	var m struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &m))
	code, _ = do(t, e.admin, http.MethodDelete, "/admin/v1/messages/"+itoa(m.ID), admin, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, e.admin, http.MethodDelete, "/admin/v1/messages/"+itoa(m.ID), admin, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, e.admin, http.MethodPut, "/admin/v1/users/"+aliceID+"/email", admin, gin.H{"new_email": adminEmail})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = do(t, e.admin, http.MethodPut, "/admin/v1/users/"+aliceID+"/email", admin, gin.H{"new_email": "alice@corp.io"})
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, e.admin, http.MethodDelete, "/admin/v1/users/"+aliceID, admin, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, e.admin, http.MethodDelete, "/admin/v1/users/"+aliceID, admin, nil)
	assert.Equal(t, http.StatusNotFound, code)
}
