package sqlite

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/davicafu/knowledgenest/internal/course/domain"
)

type CourseRepoSQLite struct {
	db *sql.DB
}

func NewCourseRepoSQLite(db *sql.DB) *CourseRepoSQLite {
	return &CourseRepoSQLite{db: db}
}

// InitSQLite crea las tablas de cursos y matrículas si no existen.
func InitSQLite(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS courses (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			title       TEXT NOT NULL,
			description TEXT,
			content_url TEXT,
			created_at  TIMESTAMP NOT NULL
		);
		CREATE TABLE IF NOT EXISTS enrollments (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id     INTEGER NOT NULL,
			course_id   INTEGER NOT NULL,
			enrolled_at TIMESTAMP NOT NULL,
			UNIQUE (user_id, course_id)
		)`)
	return err
}

func (r *CourseRepoSQLite) CreateCourse(ctx context.Context, c *domain.Course) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO courses (title, description, content_url, created_at) VALUES (?,?,?,?)`,
		c.Title, c.Description, c.ContentURL, c.CreatedAt,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (r *CourseRepoSQLite) GetCourse(ctx context.Context, id int64) (*domain.Course, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, content_url, created_at FROM courses WHERE id = ?`, id)

	var c domain.Course
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.ContentURL, &c.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrCourseNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CourseRepoSQLite) ListCourses(ctx context.Context) ([]*domain.Course, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, content_url, created_at FROM courses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []*domain.Course
	for rows.Next() {
		var c domain.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.ContentURL, &c.CreatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, &c)
	}
	return courses, rows.Err()
}

func (r *CourseRepoSQLite) CreateEnrollment(ctx context.Context, e *domain.Enrollment) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO enrollments (user_id, course_id, enrolled_at) VALUES (?,?,?)`,
		e.UserID, e.CourseID, e.EnrolledAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.ErrAlreadyEnrolled
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

func (r *CourseRepoSQLite) ListEnrollments(ctx context.Context, courseID int64) ([]*domain.Enrollment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, course_id, enrolled_at FROM enrollments WHERE course_id = ? ORDER BY id`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var enrollments []*domain.Enrollment
	for rows.Next() {
		var e domain.Enrollment
		if err := rows.Scan(&e.ID, &e.UserID, &e.CourseID, &e.EnrolledAt); err != nil {
			return nil, err
		}
		enrollments = append(enrollments, &e)
	}
	return enrollments, rows.Err()
}

// Verificación estática
var _ domain.CourseRepository = (*CourseRepoSQLite)(nil)
