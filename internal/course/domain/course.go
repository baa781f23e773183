package domain

import "time"

// Course es una entrada del catálogo.
type Course struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ContentURL  string    `json:"content_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// Enrollment es la matrícula de un usuario en un curso; única por pareja
// (user, course).
type Enrollment struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	CourseID   int64     `json:"course_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}
