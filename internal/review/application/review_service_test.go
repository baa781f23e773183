package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/knowledgenest/internal/review/application"
	"github.com/davicafu/knowledgenest/internal/review/domain"
	"github.com/davicafu/knowledgenest/internal/shared/events"
	"github.com/davicafu/knowledgenest/tests/mocks"
)

func newReviewService(pub *mocks.MockPublisher) (*application.ReviewService, *mocks.InMemoryReviewRepo) {
	repo := mocks.NewInMemoryReviewRepo()
	svc := application.NewReviewService(repo, pub, zap.NewNop())
	return svc, repo
}

func TestCreateReview_PublishesReviewCreated(t *testing.T) {
	pub := &mocks.MockPublisher{}
	svc, _ := newReviewService(pub)

	review, err := svc.CreateReview(context.Background(), 7, 3, 5, "Excelente curso")
	require.NoError(t, err)
	assert.Equal(t, int64(1), review.ID)

	last := pub.Last()
	require.NotNil(t, last)
	assert.Equal(t, events.ReviewCreated, last.RoutingKey)
	assert.Equal(t, review.ID, last.Envelope.Data["review_id"])
	assert.Equal(t, int64(7), last.Envelope.Data["user_id"])
	assert.Equal(t, int64(3), last.Envelope.Data["course_id"])
	assert.Equal(t, 5, last.Envelope.Data["rating"])
}

func TestCreateReview_RatingBounds(t *testing.T) {
	pub := &mocks.MockPublisher{}
	svc, _ := newReviewService(pub)

	for _, rating := range []int{0, -1, 6, 100} {
		_, err := svc.CreateReview(context.Background(), 7, 3, rating, "")
		assert.ErrorIs(t, err, domain.ErrInvalidRating, "rating %d", rating)
	}

	for _, rating := range []int{1, 5} {
		_, err := svc.CreateReview(context.Background(), int64(rating), 3, rating, "")
		assert.NoError(t, err, "rating %d", rating)
	}

	assert.Len(t, pub.Published, 2)
}

func TestCreateReview_Duplicate(t *testing.T) {
	pub := &mocks.MockPublisher{}
	svc, _ := newReviewService(pub)

	_, err := svc.CreateReview(context.Background(), 7, 3, 4, "Bien")
	require.NoError(t, err)

	_, err = svc.CreateReview(context.Background(), 7, 3, 2, "Cambio de opinión")
	assert.ErrorIs(t, err, domain.ErrDuplicateReview)
	assert.Len(t, pub.Published, 1)
}

func TestListByCourse_FiltersByCourse(t *testing.T) {
	pub := &mocks.MockPublisher{}
	svc, _ := newReviewService(pub)

	_, err := svc.CreateReview(context.Background(), 1, 10, 5, "")
	require.NoError(t, err)
	_, err = svc.CreateReview(context.Background(), 2, 10, 3, "")
	require.NoError(t, err)
	_, err = svc.CreateReview(context.Background(), 1, 20, 4, "")
	require.NoError(t, err)

	reviews, err := svc.ListByCourse(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}
