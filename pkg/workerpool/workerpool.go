// Package workerpool provides simple concurrent processing utilities.
package workerpool

import (
	"context"
	"sync"
)

// Result pairs one processed item with its outcome.
type Result[T, R any] struct {
	Item  T
	Value R
	Err   error
}

// Collect runs a worker pool over the provided items and gathers every item's
// outcome. A failing item never cancels its siblings; only context
// cancellation stops the pool early. The returned slice has one entry per
// item that was picked up, in completion order.
func Collect[T, R any](
	ctx context.Context,
	workerCount int,
	items []T,
	process func(context.Context, T) (R, error),
) []Result[T, R] {
	if workerCount <= 0 {
		workerCount = 1
	}
	if workerCount > len(items) {
		workerCount = len(items)
	}

	tasks := make(chan T, workerCount)
	results := make(chan Result[T, R], len(items))
	wg := sync.WaitGroup{}
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case item, ok := <-tasks:
					if !ok {
						return
					}
					value, err := process(ctx, item)
					results <- Result[T, R]{Item: item, Value: value, Err: err}
				}
			}
		}()
	}

	go func() {
		for _, item := range items {
			select {
			case <-ctx.Done():
				close(tasks)
				return
			case tasks <- item:
			}
		}
		close(tasks)
	}()

	wg.Wait()
	close(results)

	collected := make([]Result[T, R], 0, len(items))
	for res := range results {
		collected = append(collected, res)
	}
	return collected
}
