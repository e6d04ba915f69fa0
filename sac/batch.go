package sac

import (
	"context"
	"sync"
)

// Job is one independent encode request submitted to EncodeBatch.
// The job exclusively owns its arrays for the duration of the batch call.
type Job struct {
	A, B    []int16
	Width   int
	Height  int
	Options EncodeOptions
}

// BatchOptions controls batch encoding.
type BatchOptions struct {
	// Workers bounds the worker pool. Non-positive means
	// runtime.GOMAXPROCS(0).
	Workers int
}

// BatchResult aggregates the outcome of a batch encode.
type BatchResult struct {
	// Encoded maps job identifiers to container bytes.
	Encoded map[string][]byte

	// Failed maps job identifiers to the error that rejected them.
	Failed map[string]error

	// TotalBytes is the combined size of all successfully encoded
	// containers.
	TotalBytes uint64
}

// EncodeBatch encodes every job concurrently on a bounded worker pool.
//
// Jobs share no state, so each runs independently: a failing job is recorded
// in Failed and never aborts its siblings. No ordering guarantee is made;
// results are keyed by job identifier.
//
// Cancelling ctx abandons jobs that have not started yet and returns the
// partial result; abandoned jobs appear in neither Encoded nor Failed.
func EncodeBatch(ctx context.Context, jobs map[string]Job, opts BatchOptions) BatchResult {
	result := BatchResult{
		Encoded: make(map[string][]byte, len(jobs)),
		Failed:  make(map[string]error),
	}

	pool := NewWorkerPool(opts.Workers)
	defer pool.Close()

	var mu sync.Mutex
	for id, job := range jobs {
		pool.Submit(func() {
			select {
			case <-ctx.Done():
				return
			default:
			}

			data, err := EncodeWithOptions(job.A, job.B, job.Width, job.Height, job.Options)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed[id] = err
				return
			}
			result.Encoded[id] = data
			result.TotalBytes += uint64(len(data))
		})
	}
	pool.Wait()

	return result
}
