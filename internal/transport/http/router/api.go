package router

import (
	"github.com/gin-gonic/gin"
)

func NewAPIEngine(d Deps) *gin.Engine {
	r := newBase(d)

	api := r.Group("/api/v1")
	authed := api.Group("")
	authed.Use(d.authenticate())

	var reg Registry
	reg.Register(accountModule{d}, messageModule{d})
	reg.MountAPI(api, authed)
	return r
}
