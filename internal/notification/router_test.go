package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRouter_DispatchIsALookup(t *testing.T) {
	r := NewRouter(zap.NewNop())

	var got map[string]any
	r.Register("course.enrolled", func(_ context.Context, data map[string]any) error {
		got = data
		return nil
	})

	data := map[string]any{"course_id": float64(7), "user_id": float64(3)}
	err := r.Dispatch(context.Background(), "course.enrolled", data)

	assert.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestRouter_UnknownTypeIsNotAFailure(t *testing.T) {
	r := NewRouter(zap.NewNop())

	// Sin handler registrado: warning y nil, para que la entrega se confirme.
	err := r.Dispatch(context.Background(), "payment.settled", map[string]any{})

	assert.NoError(t, err)
}

func TestRouter_HandlerErrorPropagates(t *testing.T) {
	r := NewRouter(zap.NewNop())

	boom := errors.New("smtp unavailable")
	r.Register("user.registered", func(context.Context, map[string]any) error {
		return boom
	})

	err := r.Dispatch(context.Background(), "user.registered", map[string]any{})

	assert.ErrorIs(t, err, boom)
}
