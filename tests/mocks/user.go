package mocks

import (
	"context"
	"sync"

	userDomain "github.com/davicafu/knowledgenest/internal/user/domain"
)

// InMemoryUserRepo simula UserRepository con IDs autoincrementales.
type InMemoryUserRepo struct {
	Users  map[int64]*userDomain.User
	nextID int64
	mu     sync.Mutex
}

func NewInMemoryUserRepo() *InMemoryUserRepo {
	return &InMemoryUserRepo{
		Users:  make(map[int64]*userDomain.User),
		nextID: 1,
	}
}

func (r *InMemoryUserRepo) Create(ctx context.Context, u *userDomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.Users {
		if existing.Email == u.Email {
			return userDomain.ErrUserAlreadyExists
		}
	}
	u.ID = r.nextID
	r.nextID++
	r.Users[u.ID] = u
	return nil
}

func (r *InMemoryUserRepo) GetByID(ctx context.Context, id int64) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.Users[id]
	if !ok {
		return nil, userDomain.ErrUserNotFound
	}
	return u, nil
}

func (r *InMemoryUserRepo) GetByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, userDomain.ErrUserNotFound
}

func (r *InMemoryUserRepo) List(ctx context.Context) ([]*userDomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*userDomain.User, 0, len(r.Users))
	for _, u := range r.Users {
		list = append(list, u)
	}
	return list, nil
}

// Verificación estática
var _ userDomain.UserRepository = (*InMemoryUserRepo)(nil)
