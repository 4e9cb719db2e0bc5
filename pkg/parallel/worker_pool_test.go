package parallel

import (
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newPool(t testing.TB, workers int, opts ...Option) *WorkerPool {
	t.Helper()
	pool, err := NewWorkerPool(workers, opts...)
	if err != nil {
		t.Fatalf("NewWorkerPool(%d): %v", workers, err)
	}
	return pool
}

// TestWorkerPoolBasicOperations tests basic worker pool functionality
func TestWorkerPoolBasicOperations(t *testing.T) {
	pool := newPool(t, 4)

	executed := false
	if !pool.Submit(func() { executed = true }) {
		t.Error("Task submission failed")
	}

	// Close waits for the task
	pool.Close()

	if !executed {
		t.Error("Task was not executed")
	}
}

func TestWorkerPoolSize(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{"explicit", 8, 8},
		{"zero defaults to one", 0, 1},
		{"negative defaults to one", -5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := newPool(t, tt.workers)
			defer pool.Close()
			if pool.Workers() != tt.want {
				t.Errorf("Expected %d workers, got %d", tt.want, pool.Workers())
			}
			if cap(pool.taskQueue) != tt.want*2 {
				t.Errorf("Expected buffer capacity %d, got %d", tt.want*2, cap(pool.taskQueue))
			}
		})
	}
}

func TestWorkerPoolOverflow(t *testing.T) {
	// Extremely large worker counts are rejected before any allocation
	if _, err := NewWorkerPool(math.MaxInt); err == nil {
		t.Error("Expected error for too many workers")
	}
}

// TestWorkerPoolConcurrentSubmissions tests concurrent task submissions
func TestWorkerPoolConcurrentSubmissions(t *testing.T) {
	pool := newPool(t, 10)

	numTasks := 100
	var counter int64

	var wg sync.WaitGroup
	for i := 0; i < numTasks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Submit(func() {
				atomic.AddInt64(&counter, 1)
			})
		}()
	}

	wg.Wait()
	pool.Close()

	if counter != int64(numTasks) {
		t.Errorf("Expected counter %d, got %d", numTasks, counter)
	}
}

// TestWorkerPoolCloseRace validates that closing the pool while submitting tasks doesn't panic
func TestWorkerPoolCloseRace(t *testing.T) {
	for iteration := 0; iteration < 20; iteration++ {
		pool := newPool(t, 4)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 10; j++ {
					pool.Submit(func() {
						time.Sleep(100 * time.Microsecond)
					})
				}
			}()
		}

		time.Sleep(time.Millisecond)
		pool.Close()
		wg.Wait()
	}
}

// TestWorkerPoolSubmitAfterClose tests that submissions after close return false
func TestWorkerPoolSubmitAfterClose(t *testing.T) {
	pool := newPool(t, 4)

	if !pool.Submit(func() {}) {
		t.Error("Task submission before close should succeed")
	}

	pool.Close()
	pool.Close() // closing twice is safe

	if pool.Submit(func() { t.Error("This task should never execute") }) {
		t.Error("Task submission after close should return false")
	}
}

// TestWorkerPoolWithPanic tests that panics are recovered and reported
func TestWorkerPoolWithPanic(t *testing.T) {
	var panics int64
	pool := newPool(t, 4, WithPanicHandler(func(any) {
		atomic.AddInt64(&panics, 1)
	}))

	var counter int64
	for i := 0; i < 5; i++ {
		pool.Submit(func() {
			panic("intentional panic")
		})
	}
	for i := 0; i < 10; i++ {
		pool.Submit(func() {
			atomic.AddInt64(&counter, 1)
		})
	}

	pool.Close()

	if counter != 10 {
		t.Errorf("Expected counter 10, got %d", counter)
	}
	if panics != 5 {
		t.Errorf("Expected 5 recovered panics, got %d", panics)
	}
}

// BenchmarkWorkerPoolThroughput benchmarks worker pool throughput
func BenchmarkWorkerPoolThroughput(b *testing.B) {
	pool := newPool(b, 10)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.Submit(func() {})
	}

	pool.Close()
}
