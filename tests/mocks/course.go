package mocks

import (
	"context"
	"sync"

	courseDomain "github.com/davicafu/knowledgenest/internal/course/domain"
)

// InMemoryCourseRepo simula CourseRepository (catálogo + matrículas).
type InMemoryCourseRepo struct {
	Courses     map[int64]*courseDomain.Course
	Enrollments []*courseDomain.Enrollment
	nextID      int64
	mu          sync.Mutex
}

func NewInMemoryCourseRepo() *InMemoryCourseRepo {
	return &InMemoryCourseRepo{
		Courses: make(map[int64]*courseDomain.Course),
		nextID:  1,
	}
}

func (r *InMemoryCourseRepo) CreateCourse(ctx context.Context, c *courseDomain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.nextID
	r.nextID++
	r.Courses[c.ID] = c
	return nil
}

func (r *InMemoryCourseRepo) GetCourse(ctx context.Context, id int64) (*courseDomain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.Courses[id]
	if !ok {
		return nil, courseDomain.ErrCourseNotFound
	}
	return c, nil
}

func (r *InMemoryCourseRepo) ListCourses(ctx context.Context) ([]*courseDomain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*courseDomain.Course, 0, len(r.Courses))
	for _, c := range r.Courses {
		list = append(list, c)
	}
	return list, nil
}

func (r *InMemoryCourseRepo) CreateEnrollment(ctx context.Context, e *courseDomain.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Enrollments {
		if existing.UserID == e.UserID && existing.CourseID == e.CourseID {
			return courseDomain.ErrAlreadyEnrolled
		}
	}
	e.ID = r.nextID
	r.nextID++
	r.Enrollments = append(r.Enrollments, e)
	return nil
}

func (r *InMemoryCourseRepo) ListEnrollments(ctx context.Context, courseID int64) ([]*courseDomain.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*courseDomain.Enrollment
	for _, e := range r.Enrollments {
		if e.CourseID == courseID {
			list = append(list, e)
		}
	}
	return list, nil
}

// Verificación estática
var _ courseDomain.CourseRepository = (*InMemoryCourseRepo)(nil)
