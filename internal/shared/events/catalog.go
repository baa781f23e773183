package events

// Tipos de evento publicados en el exchange. Siguen el patrón <noun>.<verb>
// y se usan tal cual como routing key.
const (
	UserRegistered = "user.registered"
	CourseCreated  = "course.created"
	CourseEnrolled = "course.enrolled"
	ReviewCreated  = "review.created"
)

// Patrones de binding del consumidor de notificaciones.
// '*' casa exactamente un segmento delimitado por puntos.
const (
	PatternUser   = "user.*"
	PatternCourse = "course.*"
	PatternReview = "review.*"
)
