package parallel

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_PreservesOrder(t *testing.T) {
	for _, workers := range []int{1, 3, 16} {
		pool := newPool(t, workers)

		items := make([]int, 200)
		for i := range items {
			items[i] = i
		}
		got, err := Map(pool, items, func(n int) int { return n * n })
		require.NoError(t, err)
		for i, v := range got {
			if v != i*i {
				t.Fatalf("workers=%d: result %d = %d, want %d", workers, i, v, i*i)
			}
		}
		pool.Close()
	}
}

func TestMap_PoolReusable(t *testing.T) {
	pool := newPool(t, 2)
	defer pool.Close()

	a, err := Map(pool, []string{"a", "bb"}, func(s string) int { return len(s) })
	require.NoError(t, err)
	b, err := Map(pool, []string{"ccc"}, func(s string) int { return len(s) })
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, a)
	assert.Equal(t, []int{3}, b)

	empty, err := Map(pool, nil, func(s string) int { return 0 })
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMap_Panic(t *testing.T) {
	pool := newPool(t, 4)
	defer pool.Close()

	_, err := Map(pool, []int{1, 2, 3}, func(n int) int {
		if n == 2 {
			panic("bad item")
		}
		return n
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTaskPanic))
	assert.Contains(t, err.Error(), "item 1")
}

func TestMap_PanicReachesPoolHandler(t *testing.T) {
	var (
		mu        sync.Mutex
		recovered []any
	)
	pool := newPool(t, 2, WithPanicHandler(func(r any) {
		mu.Lock()
		recovered = append(recovered, r)
		mu.Unlock()
	}))
	defer pool.Close()

	_, err := Map(pool, []int{1, 2, 3, 4}, func(n int) int {
		if n%2 == 0 {
			panic(n)
		}
		return n
	})
	assert.ErrorIs(t, err, ErrTaskPanic)

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []any{2, 4}, recovered)
}

func TestMap_ClosedPool(t *testing.T) {
	pool := newPool(t, 1)
	pool.Close()

	_, err := Map(pool, []int{1}, func(n int) int { return n })
	assert.ErrorIs(t, err, ErrPoolClosed)
}
