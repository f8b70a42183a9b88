package router

import (
	"github.com/gin-gonic/gin"
)

// NewAdminEngine 管理端：统一要求登录，admin 角色在 service 层按存储中的角色判定
func NewAdminEngine(d Deps) *gin.Engine {
	r := newBase(d)

	admin := r.Group("/admin/v1")
	admin.Use(d.authenticate())

	var reg Registry
	reg.Register(adminModule{d})
	reg.MountAdmin(admin)
	return r
}
