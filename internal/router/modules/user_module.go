package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-task-manager/internal/interface/http"
)

// UserModule wires account routes.
// Public: POST /users, POST /users/login, GET /users/:id/profile-pic
// Protected: logout, logoutAll, profile read/update/delete, picture upload/delete
type UserModule struct {
	Handler *handlers.UserHandler
	Auth    gin.HandlerFunc
}

func NewUserModule(h *handlers.UserHandler, auth gin.HandlerFunc) *UserModule {
	return &UserModule{Handler: h, Auth: auth}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rg.POST("/users", m.Handler.Register)
	rg.POST("/users/login", m.Handler.Login)
	rg.GET("/users/:id/profile-pic", m.Handler.GetPicture)

	auth := rg.Group("/users")
	auth.Use(m.Auth)
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.POST("/logoutAll", m.Handler.LogoutAll)
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PATCH("/profile", m.Handler.UpdateProfile)
		auth.DELETE("/profile", m.Handler.DeleteProfile)
		auth.POST("/profile-pic", m.Handler.UploadPicture)
		auth.DELETE("/profile-pic", m.Handler.DeletePicture)
	}
}
