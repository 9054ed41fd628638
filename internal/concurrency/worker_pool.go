package concurrency

import (
	"context"
	"sync"
)

// Small reusable worker pool pattern for fanning out independent tasks.

type WorkerFn func(ctx context.Context, index int)

// SimpleWorkerPool runs fn from `concurrency` goroutines, once per index in
// [0, tasks), and waits for all of them.
func SimpleWorkerPool(ctx context.Context, concurrency int, tasks int, fn WorkerFn) {
	if concurrency < 1 {
		concurrency = 1
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				fn(ctx, idx)
			}
		}()
	}

	for i := 0; i < tasks; i++ {
		select {
		case indexes <- i:
		case <-ctx.Done():
			close(indexes)
			wg.Wait()
			return
		}
	}
	close(indexes)
	wg.Wait()
}
