package parallel

import (
	"errors"
	"fmt"
	"sync"
)

// ErrTaskPanic is returned by Map when a task panicked
var ErrTaskPanic = errors.New("task panicked")

// ErrPoolClosed is returned by Map when the pool stopped accepting tasks
var ErrPoolClosed = errors.New("worker pool is closed")

// Map runs fn on every item using the pool and returns the results in item order.
// Each task writes only its own result slot, so callers can reduce the slice
// on one goroutine without locking. The pool stays open for further use.
// A panicking task is reported to the pool's panic handler and fails the call
// with ErrTaskPanic.
func Map[T, R any](pool *WorkerPool, items []T, fn func(T) R) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		panicked []error
	)
	for i := range items {
		i := i
		wg.Add(1)
		ok := pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					pool.reportPanic(r)
					mu.Lock()
					panicked = append(panicked, fmt.Errorf("%w: item %d: %v", ErrTaskPanic, i, r))
					mu.Unlock()
				}
			}()
			results[i] = fn(items[i])
		})
		if !ok {
			wg.Done()
			wg.Wait()
			return nil, ErrPoolClosed
		}
	}
	wg.Wait()

	if len(panicked) > 0 {
		return nil, errors.Join(panicked...)
	}
	return results, nil
}
