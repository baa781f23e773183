package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/davicafu/knowledgenest/internal/shared/events"
)

// ---------- Errores de dominio ----------
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidUser       = errors.New("invalid user")
)

// ---------- Interfaces (Ports) ----------

// UserRepository define las operaciones persistentes para User.
type UserRepository interface {
	// Asigna el ID autoincremental. Debe devolver ErrUserAlreadyExists si el
	// email ya está en uso.
	Create(ctx context.Context, u *User) error

	// Debe devolver ErrUserNotFound si no existe.
	GetByID(ctx context.Context, id int64) (*User, error)

	// Debe devolver ErrUserNotFound si no existe.
	GetByEmail(ctx context.Context, email string) (*User, error)

	List(ctx context.Context) ([]*User, error)
}

type UserCache interface {
	// Get intenta poblar dest (puntero) con el valor asociado a la key.
	// Devuelve (true, nil) si hay hit y dest fue rellenado.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set serializa y guarda el valor con TTL en segundos.
	Set(ctx context.Context, key string, val interface{}, ttlSecs int) error

	Delete(ctx context.Context, key string) error
}

// EventPublisher publica un envelope tras el commit local. El booleano es
// informativo: false significa evento perdido, nunca registro perdido.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, env events.Envelope) bool
}

// CacheKeyByID forma una key consistente para cache usando ID.
func CacheKeyByID(id int64) string {
	return fmt.Sprintf("user:id:%d", id)
}
