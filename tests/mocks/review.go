package mocks

import (
	"context"
	"sync"

	reviewDomain "github.com/davicafu/knowledgenest/internal/review/domain"
)

// InMemoryReviewRepo simula ReviewRepository con unicidad (user, course).
type InMemoryReviewRepo struct {
	Reviews []*reviewDomain.Review
	nextID  int64
	mu      sync.Mutex
}

func NewInMemoryReviewRepo() *InMemoryReviewRepo {
	return &InMemoryReviewRepo{nextID: 1}
}

func (r *InMemoryReviewRepo) Create(ctx context.Context, rv *reviewDomain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Reviews {
		if existing.UserID == rv.UserID && existing.CourseID == rv.CourseID {
			return reviewDomain.ErrDuplicateReview
		}
	}
	rv.ID = r.nextID
	r.nextID++
	r.Reviews = append(r.Reviews, rv)
	return nil
}

func (r *InMemoryReviewRepo) ListByCourse(ctx context.Context, courseID int64) ([]*reviewDomain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*reviewDomain.Review
	for _, rv := range r.Reviews {
		if rv.CourseID == courseID {
			list = append(list, rv)
		}
	}
	return list, nil
}

// Verificación estática
var _ reviewDomain.ReviewRepository = (*InMemoryReviewRepo)(nil)
