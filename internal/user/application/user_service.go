package application

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/davicafu/knowledgenest/internal/shared/events"
	"github.com/davicafu/knowledgenest/internal/user/domain"
)

// UserService define los casos de uso relacionados con User.
type UserService struct {
	repo   domain.UserRepository
	cache  domain.UserCache
	events domain.EventPublisher
	log    *zap.Logger
}

func NewUserService(repo domain.UserRepository, cache domain.UserCache, publisher domain.EventPublisher, log *zap.Logger) *UserService {
	return &UserService{
		repo:   repo,
		cache:  cache,
		events: publisher,
		log:    log,
	}
}

// Register da de alta un usuario con la contraseña hasheada y publica
// user.registered una vez confirmado el alta local.
func (s *UserService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.cache != nil {
		go func(u *domain.User) {
			ctxCache, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			_ = s.cache.Set(ctxCache, domain.CacheKeyByID(u.ID), u, 60)
		}(user)
	}

	// Publicación best-effort después del commit: un false pierde el evento,
	// nunca el registro.
	env := events.NewEnvelope(events.UserRegistered, map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
		"name":    user.Name,
	})
	if !s.events.Publish(ctx, events.UserRegistered, env) {
		s.log.Warn("⚠️ Evento user.registered no publicado",
			zap.Int64("user_id", user.ID),
		)
	}

	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	if s.cache != nil {
		var cached domain.User
		if hit, err := s.cache.Get(ctx, domain.CacheKeyByID(id), &cached); err == nil && hit {
			return &cached, nil
		}
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		go func(u *domain.User) {
			ctxCache, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			_ = s.cache.Set(ctxCache, domain.CacheKeyByID(u.ID), u, 60)
		}(user)
	}

	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}
