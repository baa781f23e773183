package domain

import (
	"context"
	"errors"

	"github.com/davicafu/knowledgenest/internal/shared/events"
)

// ---------- Errores de dominio ----------
var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrInvalidCourse   = errors.New("invalid course")
	ErrAlreadyEnrolled = errors.New("user already enrolled in course")
)

// ---------- Interfaces (Ports) ----------

// CourseRepository define la persistencia del catálogo y las matrículas.
type CourseRepository interface {
	// Asigna el ID autoincremental del curso.
	CreateCourse(ctx context.Context, c *Course) error

	// Debe devolver ErrCourseNotFound si no existe.
	GetCourse(ctx context.Context, id int64) (*Course, error)

	ListCourses(ctx context.Context) ([]*Course, error)

	// Debe devolver ErrAlreadyEnrolled si la pareja (user, course) ya existe.
	CreateEnrollment(ctx context.Context, e *Enrollment) error

	ListEnrollments(ctx context.Context, courseID int64) ([]*Enrollment, error)
}

// EventPublisher publica un envelope tras el commit local; el booleano es
// informativo, nunca un error HTTP.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, env events.Envelope) bool
}
