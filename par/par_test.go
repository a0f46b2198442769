package par

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkSize(t *testing.T) {
	assert.Equal(t, 3, ChunkSize(9, 3))
	assert.Equal(t, 4, ChunkSize(10, 3))
	assert.Equal(t, 1, ChunkSize(2, 8))
	assert.Equal(t, 5, ChunkSize(5, 0), "zero workers fall back to one")
	assert.Equal(t, 1, ChunkSize(0, 4))
}

func TestRangesCoverEveryUnitOnce(t *testing.T) {
	seen := make([]int, 100)
	var mu sync.Mutex

	err := Ranges(100, 7, func(start, end int) error {
		mu.Lock()
		defer mu.Unlock()
		for i := start; i < end; i++ {
			seen[i]++
		}
		return nil
	})
	require.NoError(t, err)
	for i, n := range seen {
		assert.Equal(t, 1, n, "unit %d", i)
	}
}

func TestRangesEmpty(t *testing.T) {
	called := false
	require.NoError(t, Ranges(0, 4, func(int, int) error {
		called = true
		return nil
	}))
	assert.False(t, called)

	require.Error(t, Ranges(-1, 4, func(int, int) error { return nil }))
}

func TestRangesPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	err := Ranges(10, 2, func(start, end int) error {
		if start == 0 {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
}
