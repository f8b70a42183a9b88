package ez

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gin-gorm-messenger/internal/domain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{domain.Validation("bad input"), 400, "bad input"},
		{domain.Conflict("email already registered"), 400, "email already registered"},
		{domain.Unauthenticated("invalid email or password"), 401, "invalid email or password"},
		{domain.Forbidden("insufficient role"), 403, "insufficient role"},
		{domain.NotFound("message not found"), 404, "message not found"},
		{fmt.Errorf("wrapped: %w", domain.NotFound("user not found")), 404, "user not found"},
		{domain.Internal("db", errors.New("x")), 500, "db"},
		{BadRequest("invalid id"), 400, "invalid id"},
		{errors.New("plain"), 500, "plain"},
	}
	for _, tc := range cases {
		code, msg := Classify(tc.err)
		assert.Equal(t, tc.code, code, tc.err.Error())
		assert.Equal(t, tc.msg, msg)
	}
}

type echoIn struct {
	Name string `json:"name" binding:"required,min=3"`
}

func newEngine(h func(c *gin.Context, in *echoIn) (gin.H, error)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterAction(New(r.Group(""), nil), Action[echoIn, gin.H]{
		Method:  http.MethodPost,
		Path:    "/echo/:id",
		Binder:  BindJSON,
		Handler: h,
	})
	return r
}

func post(r http.Handler, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestRegisterAction(t *testing.T) {
	r := newEngine(func(c *gin.Context, in *echoIn) (gin.H, error) {
		id, err := ParamID(c, "id")
		if err != nil {
			return nil, err
		}
		if in.Name == "boom" {
			return nil, domain.Internal("save failed", errors.New("secret driver detail"))
		}
		return gin.H{"id": id, "name": in.Name}, nil
	})

	w, out := post(r, "/echo/5", `{"name":"alice"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, out["code"])
	assert.Equal(t, map[string]any{"id": float64(5), "name": "alice"}, out["data"])

	w, out = post(r, "/echo/5", `{"name":"al"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "name must be at least 3 characters", out["msg"])

	w, _ = post(r, "/echo/5", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = post(r, "/echo/zero", `{"name":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, out = post(r, "/echo/5", `{"name":"boom"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", out["msg"])
	assert.NotContains(t, w.Body.String(), "secret driver detail")
}

func TestRegisterAction_AuthRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterAction(New(r.Group(""), nil), Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/private",
		Binder: BindNone,
		Auth:   true,
		Handler: func(*gin.Context, *struct{}) (gin.H, error) {
			return gin.H{}, nil
		},
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
