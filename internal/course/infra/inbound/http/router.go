package http

import "github.com/gin-gonic/gin"

// RegisterCourseRoutes registra las rutas del catálogo de cursos.
func RegisterCourseRoutes(r *gin.Engine, h *CourseHandler) {
	r.POST("/courses", h.CreateCourse)
	r.GET("/courses", h.ListCourses)
	r.POST("/courses/:id/enroll", h.Enroll)
	r.GET("/courses/:id/enrollments", h.ListEnrollments)
}
