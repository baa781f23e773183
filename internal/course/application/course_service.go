package application

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/davicafu/knowledgenest/internal/course/domain"
	"github.com/davicafu/knowledgenest/internal/shared/events"
)

// CourseService define los casos de uso del catálogo de cursos.
type CourseService struct {
	repo   domain.CourseRepository
	events domain.EventPublisher
	log    *zap.Logger
}

func NewCourseService(repo domain.CourseRepository, publisher domain.EventPublisher, log *zap.Logger) *CourseService {
	return &CourseService{
		repo:   repo,
		events: publisher,
		log:    log,
	}
}

// CreateCourse da de alta un curso y publica course.created tras el commit.
func (s *CourseService) CreateCourse(ctx context.Context, title, description, contentURL string) (*domain.Course, error) {
	if strings.TrimSpace(title) == "" {
		return nil, domain.ErrInvalidCourse
	}

	course := &domain.Course{
		Title:       title,
		Description: description,
		ContentURL:  contentURL,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.CreateCourse(ctx, course); err != nil {
		return nil, err
	}

	env := events.NewEnvelope(events.CourseCreated, map[string]any{
		"course_id": course.ID,
		"title":     course.Title,
	})
	if !s.events.Publish(ctx, events.CourseCreated, env) {
		s.log.Warn("⚠️ Evento course.created no publicado",
			zap.Int64("course_id", course.ID),
		)
	}

	return course, nil
}

func (s *CourseService) GetCourse(ctx context.Context, id int64) (*domain.Course, error) {
	return s.repo.GetCourse(ctx, id)
}

func (s *CourseService) ListCourses(ctx context.Context) ([]*domain.Course, error) {
	return s.repo.ListCourses(ctx)
}

// Enroll matricula a un usuario en un curso existente y publica
// course.enrolled tras el commit.
func (s *CourseService) Enroll(ctx context.Context, userID, courseID int64) (*domain.Enrollment, error) {
	course, err := s.repo.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrollment := &domain.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
	}

	if err := s.repo.CreateEnrollment(ctx, enrollment); err != nil {
		return nil, err
	}

	env := events.NewEnvelope(events.CourseEnrolled, map[string]any{
		"user_id":      userID,
		"course_id":    courseID,
		"course_title": course.Title,
	})
	if !s.events.Publish(ctx, events.CourseEnrolled, env) {
		s.log.Warn("⚠️ Evento course.enrolled no publicado",
			zap.Int64("user_id", userID),
			zap.Int64("course_id", courseID),
		)
	}

	return enrollment, nil
}

func (s *CourseService) ListEnrollments(ctx context.Context, courseID int64) ([]*domain.Enrollment, error) {
	return s.repo.ListEnrollments(ctx, courseID)
}
