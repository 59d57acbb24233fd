package registry

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scottcame/piet/internal/common"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry[int]()

	isNew, err := r.Register("analysis", 1)
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = r.Register("analysis", 2)
	require.NoError(t, err)
	assert.False(t, isNew, "second Register replaces the item")

	v, ok := r.Get("analysis")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	_, err = r.Register("", 3)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))

	_, err = r.MustGet("missing")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry[int]()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Register("analysis", i)
			assert.NoError(t, err)
			_, ok := r.Get("analysis")
			assert.True(t, ok)
		}(i)
	}
	wg.Wait()

	v, err := r.MustGet("analysis")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, v, 0)
}
