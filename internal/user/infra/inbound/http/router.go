package http

import "github.com/gin-gonic/gin"

// RegisterUserRoutes registra las rutas del servicio de usuarios.
func RegisterUserRoutes(r *gin.Engine, h *UserHandler) {
	r.POST("/register", h.Register)
	r.GET("/users/:id", h.GetUser)
	r.GET("/users", h.ListUsers)
}
