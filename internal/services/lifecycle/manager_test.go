package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShutdownRunsHooksInReverse(t *testing.T) {
	m := New(time.Second, nil)
	var order []string
	m.Register("db", func(context.Context) error { order = append(order, "db"); return nil })
	m.RegisterCloser("cache", func() error { order = append(order, "cache"); return nil })
	m.Register("http", func(context.Context) error { order = append(order, "http"); return nil })

	assert.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"http", "cache", "db"}, order)
}

func TestShutdownJoinsErrorsAndContinues(t *testing.T) {
	m := New(time.Second, nil)
	boom := errors.New("boom")
	ran := false
	m.Register("first", func(context.Context) error { ran = true; return nil })
	m.Register("second", func(context.Context) error { return boom })

	err := m.Shutdown(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.True(t, ran)
}

func TestShutdownIsIdempotent(t *testing.T) {
	m := New(time.Second, nil)
	calls := 0
	m.Register("x", func(context.Context) error { calls++; return nil })

	assert.NoError(t, m.Shutdown(context.Background()))
	assert.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestShutdownHookSeesDeadline(t *testing.T) {
	m := New(50*time.Millisecond, nil)
	m.Register("slow", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return nil
	})
	assert.NoError(t, m.Shutdown(context.Background()))
}
