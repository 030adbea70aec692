package router

import "github.com/gin-gonic/gin"

// Module registers a feature's routes on the /api group. Modules own their
// auth requirements: protected routes add the Auth middleware themselves.
type Module interface {
	Register(rg *gin.RouterGroup)
}
