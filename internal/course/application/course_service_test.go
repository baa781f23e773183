package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/knowledgenest/internal/course/application"
	"github.com/davicafu/knowledgenest/internal/course/domain"
	"github.com/davicafu/knowledgenest/internal/shared/events"
	"github.com/davicafu/knowledgenest/tests/mocks"
)

func newCourseService(pub *mocks.MockPublisher) (*application.CourseService, *mocks.InMemoryCourseRepo) {
	repo := mocks.NewInMemoryCourseRepo()
	svc := application.NewCourseService(repo, pub, zap.NewNop())
	return svc, repo
}

func TestCreateCourse_PublishesCourseCreated(t *testing.T) {
	pub := &mocks.MockPublisher{}
	svc, _ := newCourseService(pub)

	course, err := svc.CreateCourse(context.Background(), "Go desde cero", "Intro", "https://example.com/go")
	require.NoError(t, err)
	assert.Equal(t, int64(1), course.ID)

	last := pub.Last()
	require.NotNil(t, last)
	assert.Equal(t, events.CourseCreated, last.RoutingKey)
	assert.Equal(t, course.ID, last.Envelope.Data["course_id"])
	assert.Equal(t, "Go desde cero", last.Envelope.Data["title"])
}

func TestCreateCourse_EmptyTitle(t *testing.T) {
	pub := &mocks.MockPublisher{}
	svc, _ := newCourseService(pub)

	_, err := svc.CreateCourse(context.Background(), "   ", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidCourse)
	assert.Empty(t, pub.Published)
}

func TestEnroll_PublishesCourseEnrolledWithTitle(t *testing.T) {
	pub := &mocks.MockPublisher{}
	svc, _ := newCourseService(pub)

	course, err := svc.CreateCourse(context.Background(), "Go desde cero", "", "")
	require.NoError(t, err)

	enrollment, err := svc.Enroll(context.Background(), 7, course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), enrollment.UserID)

	last := pub.Last()
	require.NotNil(t, last)
	assert.Equal(t, events.CourseEnrolled, last.RoutingKey)
	assert.Equal(t, int64(7), last.Envelope.Data["user_id"])
	assert.Equal(t, course.ID, last.Envelope.Data["course_id"])
	assert.Equal(t, "Go desde cero", last.Envelope.Data["course_title"])
}

func TestEnroll_CourseNotFound(t *testing.T) {
	pub := &mocks.MockPublisher{}
	svc, _ := newCourseService(pub)

	_, err := svc.Enroll(context.Background(), 7, 99)
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)
	assert.Empty(t, pub.Published)
}

func TestEnroll_Duplicate(t *testing.T) {
	pub := &mocks.MockPublisher{}
	svc, _ := newCourseService(pub)

	course, err := svc.CreateCourse(context.Background(), "Go desde cero", "", "")
	require.NoError(t, err)

	_, err = svc.Enroll(context.Background(), 7, course.ID)
	require.NoError(t, err)

	_, err = svc.Enroll(context.Background(), 7, course.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyEnrolled)

	// course.created + un único course.enrolled
	assert.Len(t, pub.Published, 2)
}
