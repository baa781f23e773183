package http

import "github.com/gin-gonic/gin"

// RegisterReviewRoutes registra las rutas de reseñas.
func RegisterReviewRoutes(r *gin.Engine, h *ReviewHandler) {
	r.POST("/courses/:id/reviews", h.CreateReview)
	r.GET("/courses/:id/reviews", h.ListReviews)
}
