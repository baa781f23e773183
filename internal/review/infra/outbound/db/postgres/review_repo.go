package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // Driver de PostgreSQL

	"github.com/davicafu/knowledgenest/internal/review/domain"
)

// ReviewRepoPostgres implementa ReviewRepository para PostgreSQL.
type ReviewRepoPostgres struct {
	db *sql.DB
}

func NewReviewRepoPostgres(db *sql.DB) *ReviewRepoPostgres {
	return &ReviewRepoPostgres{db: db}
}

// InitPostgres crea la tabla de reseñas si no existe.
func InitPostgres(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS reviews (
			id         BIGSERIAL PRIMARY KEY,
			user_id    BIGINT NOT NULL,
			course_id  BIGINT NOT NULL,
			rating     INTEGER NOT NULL CHECK (rating >= 1 AND rating <= 5),
			comment    TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			UNIQUE (user_id, course_id)
		)`)
	return err
}

func (r *ReviewRepoPostgres) Create(ctx context.Context, rv *domain.Review) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO reviews (user_id, course_id, rating, comment, created_at)
		 VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		rv.UserID, rv.CourseID, rv.Rating, rv.Comment, rv.CreatedAt,
	).Scan(&rv.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return domain.ErrDuplicateReview
		}
		return err
	}
	return nil
}

func (r *ReviewRepoPostgres) ListByCourse(ctx context.Context, courseID int64) ([]*domain.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, course_id, rating, comment, created_at
		 FROM reviews WHERE course_id = $1 ORDER BY id`, courseID)
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
var _ domain.ReviewRepository = (*ReviewRepoPostgres)(nil)
