package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-gorm-messenger/internal/service"
	"go-gin-gorm-messenger/internal/transport/http/ez"
	mdw "go-gin-gorm-messenger/internal/transport/http/middleware"
)

type accountModule struct{ d Deps }

func (accountModule) Priority() int { return 10 }

type registerIn struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email"    binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=8,max=72,strongpwd"`
}

type registerOut struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type loginIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type emailIn struct {
	NewEmail string `json:"new_email" binding:"required,email,max=100"`
}

type passwordIn struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72,strongpwd"`
}

func (m accountModule) MountAPI(pub, authed *gin.RouterGroup) {
	accounts := m.d.Accounts

	ezPub := ez.New(pub, m.d.Log)
	ez.RegisterAction(ezPub, ez.Action[registerIn, registerOut]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *registerIn) (registerOut, error) {
			u, err := accounts.Register(c.Request.Context(), service.RegisterInput{
				Username: in.Username, Email: in.Email, Password: in.Password,
			})
			if err != nil {
				return registerOut{}, err
			}
			return registerOut{ID: u.ID, Username: u.Username, Email: u.Email}, nil
		},
	})
	ez.RegisterAction(ezPub, ez.Action[loginIn, *service.LoginResult]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (*service.LoginResult, error) {
			return accounts.Login(c.Request.Context(), in.Email, in.Password)
		},
	})

	ezAuth := ez.New(authed, m.d.Log)
	ez.RegisterAction(ezAuth, ez.Action[struct{}, *service.Profile]{
		Method: http.MethodGet,
		Path:   "/users/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*service.Profile, error) {
			return accounts.Me(c.Request.Context(), mdw.CurrentUser(c))
		},
	})
	ez.RegisterAction(ezAuth, ez.Action[emailIn, gin.H]{
		Method: http.MethodPut,
		Path:   "/users/email",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *emailIn) (gin.H, error) {
			u := mdw.CurrentUser(c)
			if err := accounts.UpdateEmail(c.Request.Context(), u, in.NewEmail); err != nil {
				return nil, err
			}
			return gin.H{"email": u.Email}, nil
		},
	})
	ez.RegisterAction(ezAuth, ez.Action[passwordIn, gin.H]{
		Method: http.MethodPut,
		Path:   "/users/password",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *passwordIn) (gin.H, error) {
			if err := accounts.UpdatePassword(c.Request.Context(), mdw.CurrentUser(c), in.OldPassword, in.NewPassword); err != nil {
				return nil, err
			}
			return gin.H{"updated": true}, nil
		},
	})
}
