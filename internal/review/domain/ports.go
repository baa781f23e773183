package domain

import (
	"context"
	"errors"

	"github.com/davicafu/knowledgenest/internal/shared/events"
)

// ---------- Errores de dominio ----------
var (
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrDuplicateReview = errors.New("user already reviewed this course")
)

// ---------- Interfaces (Ports) ----------

type ReviewRepository interface {
	// Asigna el ID autoincremental. Debe devolver ErrDuplicateReview si la
	// pareja (user, course) ya tiene reseña.
	Create(ctx context.Context, r *Review) error

	ListByCourse(ctx context.Context, courseID int64) ([]*Review, error)
}

// EventPublisher publica un envelope tras el commit local; el booleano es
// informativo, nunca un error HTTP.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, env events.Envelope) bool
}
