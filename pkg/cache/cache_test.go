package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastetrail/tastetrail/pkg/logging"
)

func TestDisabledCache(t *testing.T) {
	c := New(Config{}, logging.NewNopLogger())
	assert.False(t, c.Enabled())

	var dst []string
	err := c.Get(context.Background(), "k", &dst)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMiss))

	// Set is a no-op, not a panic.
	c.Set(context.Background(), "k", []string{"a"})
	require.NoError(t, c.Close())
}

func TestKey_StableAndDistinct(t *testing.T) {
	k1 := Key("search", "pasta", "rome", "")
	k2 := Key("search", "pasta", "rome", "")
	k3 := Key("search", "pasta", "", "rome")

	assert.Equal(t, k1, k2)
	// The separator keeps shifted parameters from colliding.
	assert.NotEqual(t, k1, k3)
	assert.Contains(t, k1, "tastetrail:search:")
}
