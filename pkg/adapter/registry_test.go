package adapter

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdapter struct {
	BaseSQLAdapter
}

func (f *fakeAdapter) Connect(ctx context.Context, cfg Config) error { return nil }
func (f *fakeAdapter) DialectName() string                           { return "fake" }

func TestRegisterAndGet(t *testing.T) {
	Register("fake", func(logger *slog.Logger) Adapter {
		return &fakeAdapter{}
	})

	factory, ok := Get("fake")
	require.True(t, ok)
	assert.Equal(t, "fake", factory(nil).DialectName())

	// lookup is case-insensitive
	_, ok = Get("FAKE")
	assert.True(t, ok)
}

func TestNewUnknownType(t *testing.T) {
	_, err := New(Config{Type: "cobol"}, nil)
	require.Error(t, err)

	var unknownErr *UnknownAdapterError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "cobol", unknownErr.Type)
}

func TestNewMissingType(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}

func TestBaseAdapterNotConnected(t *testing.T) {
	var b BaseSQLAdapter

	err := b.Exec(context.Background(), "SELECT 1")
	assert.ErrorContains(t, err, "not established")

	_, err = b.Query(context.Background(), "SELECT 1")
	assert.ErrorContains(t, err, "not established")

	assert.False(t, b.IsConnected())
	assert.NoError(t, b.Close())
}
