package sqlite

import (
	"context"
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/davicafu/knowledgenest/internal/review/domain"
)

type ReviewRepoSQLite struct {
	db *sql.DB
}

func NewReviewRepoSQLite(db *sql.DB) *ReviewRepoSQLite {
	return &ReviewRepoSQLite{db: db}
}

// InitSQLite crea la tabla de reseñas si no existe.
func InitSQLite(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS reviews (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL,
			course_id  INTEGER NOT NULL,
			rating     INTEGER NOT NULL CHECK (rating >= 1 AND rating <= 5),
			comment    TEXT,
			created_at TIMESTAMP NOT NULL,
			UNIQUE (user_id, course_id)
		)`)
	return err
}

func (r *ReviewRepoSQLite) Create(ctx context.Context, rv *domain.Review) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO reviews (user_id, course_id, rating, comment, created_at) VALUES (?,?,?,?,?)`,
		rv.UserID, rv.CourseID, rv.Rating, rv.Comment, rv.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.ErrDuplicateReview
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = id
	return nil
}

func (r *ReviewRepoSQLite) ListByCourse(ctx context.Context, courseID int64) ([]*domain.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, course_id, rating, comment, created_at
		 FROM reviews WHERE course_id = ? ORDER BY id`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.CourseID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, &rv)
	}
	return reviews, rows.Err()
}

// Verificación estática
var _ domain.ReviewRepository = (*ReviewRepoSQLite)(nil)
