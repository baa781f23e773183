package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/davicafu/knowledgenest/internal/review/domain"
	"github.com/davicafu/knowledgenest/internal/shared/events"
)

// ReviewService define los casos de uso de reseñas de cursos.
type ReviewService struct {
	repo   domain.ReviewRepository
	events domain.EventPublisher
	log    *zap.Logger
}

func NewReviewService(repo domain.ReviewRepository, publisher domain.EventPublisher, log *zap.Logger) *ReviewService {
	return &ReviewService{
		repo:   repo,
		events: publisher,
		log:    log,
	}
}

// CreateReview valida el rating, persiste la reseña y publica review.created
// tras el commit.
func (s *ReviewService) CreateReview(ctx context.Context, userID, courseID int64, rating int, comment string) (*domain.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, domain.ErrInvalidRating
	}

	review := &domain.Review{
		UserID:    userID,
		CourseID:  courseID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}

	env := events.NewEnvelope(events.ReviewCreated, map[string]any{
		"review_id": review.ID,
		"user_id":   userID,
		"course_id": courseID,
		"rating":    rating,
	})
	if !s.events.Publish(ctx, events.ReviewCreated, env) {
		s.log.Warn("⚠️ Evento review.created no publicado",
			zap.Int64("review_id", review.ID),
		)
	}

	return review, nil
}

func (s *ReviewService) ListByCourse(ctx context.Context, courseID int64) ([]*domain.Review, error) {
	return s.repo.ListByCourse(ctx, courseID)
}
