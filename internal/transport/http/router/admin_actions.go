package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-gorm-messenger/internal/service"
	"go-gin-gorm-messenger/internal/transport/http/ez"
	mdw "go-gin-gorm-messenger/internal/transport/http/middleware"
)

type adminModule struct{ d Deps }

type listUsersQ struct {
	Offset int    `form:"offset,default=0"`
	Limit  int    `form:"limit,default=20"`
	Q      string `form:"q"` // 按 email/username 模糊搜
}

type adminPasswordIn struct {
	NewPassword string `json:"new_password" binding:"required,min=8,max=72,strongpwd"`
}

// 把管理端接口集中在这里注册
func (m adminModule) MountAdmin(g *gin.RouterGroup) {
	admin := m.d.Admin
	e := ez.New(g, m.d.Log)

	// --- GET /admin/v1/users  用户列表 ---
	ez.RegisterAction(e, ez.Action[listUsersQ, *service.UserPage]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *listUsersQ) (*service.UserPage, error) {
			return admin.ListUsers(c.Request.Context(), mdw.CurrentUser(c), in.Offset, in.Limit, in.Q)
		},
	})

	ez.RegisterAction(e, ez.Action[adminPasswordIn, gin.H]{
		Method: http.MethodPut,
		Path:   "/users/:id/password",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *adminPasswordIn) (gin.H, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			if err := admin.ChangePassword(c.Request.Context(), mdw.CurrentUser(c), id, in.NewPassword); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[emailIn, gin.H]{
		Method: http.MethodPut,
		Path:   "/users/:id/email",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *emailIn) (gin.H, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			if err := admin.ChangeEmail(c.Request.Context(), mdw.CurrentUser(c), id, in.NewEmail); err != nil {
				return nil, err
			}
			return gin.H{"id": id, "email": service.NormalizeEmail(in.NewEmail)}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			if err := admin.DeleteUser(c.Request.Context(), mdw.CurrentUser(c), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/messages/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			if err := admin.DeleteMessage(c.Request.Context(), mdw.CurrentUser(c), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})
}
