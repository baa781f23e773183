package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/davicafu/knowledgenest/internal/course/application"
	"github.com/davicafu/knowledgenest/internal/course/domain"
)

// CourseHandler encapsula los endpoints HTTP del catálogo de cursos.
type CourseHandler struct {
	service *application.CourseService
}

func NewCourseHandler(service *application.CourseService) *CourseHandler {
	return &CourseHandler{service: service}
}

// CreateCourse endpoint POST /courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		ContentURL  string `json:"content_url"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course, err := h.service.CreateCourse(c.Request.Context(), req.Title, req.Description, req.ContentURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, course)
}

// ListCourses endpoint GET /courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.service.ListCourses(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, courses)
}

// Enroll endpoint POST /courses/:id/enroll
func (h *CourseHandler) Enroll(c *gin.Context) {
	courseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	var req struct {
		UserID int64 `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	enrollment, err := h.service.Enroll(c.Request.Context(), req.UserID, courseID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCourseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		case errors.Is(err, domain.ErrAlreadyEnrolled):
			c.JSON(http.StatusConflict, gin.H{"error": "user already enrolled in this course"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, enrollment)
}

// ListEnrollments endpoint GET /courses/:id/enrollments
func (h *CourseHandler) ListEnrollments(c *gin.Context) {
	courseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid course id"})
		return
	}

	enrollments, err := h.service.ListEnrollments(c.Request.Context(), courseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, enrollments)
}
