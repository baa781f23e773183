package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/davicafu/knowledgenest/internal/shared/events"
	"github.com/davicafu/knowledgenest/internal/user/application"
	"github.com/davicafu/knowledgenest/internal/user/domain"
	"github.com/davicafu/knowledgenest/tests/mocks"
)

func newUserService(pub *mocks.MockPublisher) (*application.UserService, *mocks.InMemoryUserRepo) {
	repo := mocks.NewInMemoryUserRepo()
	svc := application.NewUserService(repo, nil, pub, zap.NewNop())
	return svc, repo
}

func TestRegister_HashesPasswordAndPublishes(t *testing.T) {
	pub := &mocks.MockPublisher{}
	svc, repo := newUserService(pub)

	user, err := svc.Register(context.Background(), "ana@example.com", "s3cretpass", "Ana")
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.Equal(t, int64(1), user.ID)
	assert.NotEqual(t, "s3cretpass", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cretpass")))

	stored, err := repo.GetByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)

	// El evento se publica después del commit, con el ID ya asignado.
	last := pub.Last()
	require.NotNil(t, last)
	assert.Equal(t, events.UserRegistered, last.RoutingKey)
	assert.Equal(t, events.UserRegistered, last.Envelope.EventType)
	assert.Equal(t, user.ID, last.Envelope.Data["user_id"])
	assert.Equal(t, "ana@example.com", last.Envelope.Data["email"])
}

func TestRegister_DuplicateEmail(t *testing.T) {
	pub := &mocks.MockPublisher{}
	svc, _ := newUserService(pub)

	_, err := svc.Register(context.Background(), "ana@example.com", "s3cretpass", "Ana")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "ana@example.com", "otherpass1", "Ana 2")
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	// Solo el alta que llegó a commit publica evento.
	assert.Len(t, pub.Published, 1)
}

func TestRegister_InvalidInput(t *testing.T) {
	pub := &mocks.MockPublisher{}
	svc, _ := newUserService(pub)

	_, err := svc.Register(context.Background(), "", "s3cretpass", "Ana")
	assert.ErrorIs(t, err, domain.ErrInvalidUser)

	_, err = svc.Register(context.Background(), "ana@example.com", "", "Ana")
	assert.ErrorIs(t, err, domain.ErrInvalidUser)

	assert.Empty(t, pub.Published)
}

func TestRegister_PublishFailureDoesNotFailRegistration(t *testing.T) {
	pub := &mocks.MockPublisher{Fail: true}
	svc, repo := newUserService(pub)

	user, err := svc.Register(context.Background(), "ana@example.com", "s3cretpass", "Ana")
	require.NoError(t, err)

	// El registro sobrevive aunque el broker esté caído.
	_, err = repo.GetByID(context.Background(), user.ID)
	assert.NoError(t, err)
	assert.Empty(t, pub.Published)
}

func TestGetUser_CacheAside(t *testing.T) {
	repo := mocks.NewInMemoryUserRepo()
	cache := mocks.NewDummyCache()
	svc := application.NewUserService(repo, cache, &mocks.MockPublisher{}, zap.NewNop())

	cached := &domain.User{ID: 42, Email: "cached@example.com", Name: "Cached"}
	require.NoError(t, cache.Set(context.Background(), domain.CacheKeyByID(42), cached, 60))

	// Hit: no hace falta que exista en el repo.
	user, err := svc.GetUser(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "cached@example.com", user.Email)

	// Miss: cae al repo y devuelve not found.
	_, err = svc.GetUser(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
