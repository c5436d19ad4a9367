package bridge

import (
	"context"
	"sync"
)

// Parallel calls fn for each job index in [0, n) on a pool of threads
// goroutines and waits for all of them. Each call should only write to its
// own job's result slot. Jobs not started before ctx is done are skipped,
// and the returned slice marks which jobs ran
func Parallel(ctx context.Context, threads, n int, fn func(i int)) []bool {
	if threads < 1 {
		threads = 1
	}
	ran := make([]bool, n)

	jobs := make(chan int, threads*2)
	var wg sync.WaitGroup
	wg.Add(threads)
	for w := 0; w < threads; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue // drain
				}
				fn(i)
				ran[i] = true
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return ran
}
