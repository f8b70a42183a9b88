package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-gorm-messenger/internal/domain"
	"go-gin-gorm-messenger/internal/transport/http/ez"
	mdw "go-gin-gorm-messenger/internal/transport/http/middleware"
)

type messageModule struct{ d Deps }

type messageIn struct {
	Content string `json:"content" binding:"required,min=4,max=1024"`
}

func (m messageModule) MountAPI(_, authed *gin.RouterGroup) {
	msgs := m.d.Messages
	e := ez.New(authed, m.d.Log)

	ez.RegisterAction(e, ez.Action[messageIn, *domain.Message]{
		Method: http.MethodPost,
		Path:   "/messages",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *messageIn) (*domain.Message, error) {
			return msgs.Create(c.Request.Context(), mdw.CurrentUser(c), in.Content)
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, []domain.MessageView]{
		Method: http.MethodGet,
		Path:   "/messages",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.MessageView, error) {
			return msgs.List(c.Request.Context())
		},
	})
	ez.RegisterAction(e, ez.Action[messageIn, *domain.Message]{
		Method: http.MethodPut,
		Path:   "/messages/:id",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *messageIn) (*domain.Message, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return msgs.Update(c.Request.Context(), mdw.CurrentUser(c), id, in.Content)
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
			if err := msgs.Delete(c.Request.Context(), mdw.CurrentUser(c), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})
}
