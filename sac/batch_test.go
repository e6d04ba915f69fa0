package sac

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
)

func makeJobs(n int) map[string]Job {
	jobs := make(map[string]Job, n)
	for i := 0; i < n; i++ {
		field := make([]int16, 12)
		for j := range field {
			field[j] = int16(i - j)
		}
		jobs[fmt.Sprintf("job-%03d", i)] = Job{A: field, Width: 4, Height: 3}
	}
	return jobs
}

func TestEncodeBatch(t *testing.T) {
	jobs := makeJobs(20)
	result := EncodeBatch(context.Background(), jobs, BatchOptions{Workers: 4})

	if len(result.Failed) != 0 {
		t.Fatalf("unexpected failures: %v", result.Failed)
	}
	if len(result.Encoded) != len(jobs) {
		t.Fatalf("encoded %d jobs, want %d", len(result.Encoded), len(jobs))
	}

	var wantBytes uint64
	for id, job := range jobs {
		data, ok := result.Encoded[id]
		if !ok {
			t.Fatalf("missing result for %s", id)
		}
		c, err := Decode(data)
		if err != nil {
			t.Fatalf("decode %s: %v", id, err)
		}
		if !slices.Equal(c.A, job.A) {
			t.Errorf("%s: decoded A differs", id)
		}
		wantBytes += uint64(EncodedSize(len(job.A), 0, true))
	}
	if result.TotalBytes != wantBytes {
		t.Errorf("TotalBytes: got %d, want %d", result.TotalBytes, wantBytes)
	}
}

func TestEncodeBatchIsolation(t *testing.T) {
	jobs := makeJobs(10)
	// One job with a field that cannot match its declared shape.
	jobs["job-bad"] = Job{A: []int16{1, 2, 3}, Width: 4, Height: 3}

	result := EncodeBatch(context.Background(), jobs, BatchOptions{Workers: 4})

	if len(result.Encoded) != 10 {
		t.Errorf("encoded %d jobs, want 10", len(result.Encoded))
	}
	if len(result.Failed) != 1 {
		t.Fatalf("failed %d jobs, want 1", len(result.Failed))
	}
	if err := result.Failed["job-bad"]; !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("job-bad error: got %v, want ErrShapeMismatch", err)
	}
}

func TestEncodeBatchEmpty(t *testing.T) {
	result := EncodeBatch(context.Background(), nil, BatchOptions{})
	if len(result.Encoded) != 0 || len(result.Failed) != 0 || result.TotalBytes != 0 {
		t.Errorf("empty batch: %+v", result)
	}
}

func TestEncodeBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := EncodeBatch(ctx, makeJobs(50), BatchOptions{Workers: 2})

	// A cancelled context abandons unstarted jobs: they appear in neither
	// map, and the batch still returns cleanly.
	if got := len(result.Encoded) + len(result.Failed); got == 50 {
		t.Skip("all jobs ran before cancellation was observed")
	}
	if result.TotalBytes > 0 && len(result.Encoded) == 0 {
		t.Error("TotalBytes nonzero with no encoded jobs")
	}
}

func TestEncodeBatchDefaultWorkers(t *testing.T) {
	jobs := makeJobs(3)
	result := EncodeBatch(context.Background(), jobs, BatchOptions{})
	if len(result.Encoded) != 3 {
		t.Errorf("encoded %d jobs, want 3", len(result.Encoded))
	}
}

func TestWorkerPool(t *testing.T) {
	pool := NewWorkerPool(3)
	defer pool.Close()

	if pool.NumWorkers() != 3 {
		t.Fatalf("NumWorkers: got %d, want 3", pool.NumWorkers())
	}

	results := make([]int, 100)
	for i := range results {
		pool.Submit(func() { results[i] = i + 1 })
	}
	pool.Wait()

	for i, v := range results {
		if v != i+1 {
			t.Fatalf("task %d did not run", i)
		}
	}
}

func TestWorkerPoolDefaultSize(t *testing.T) {
	pool := NewWorkerPool(0)
	defer pool.Close()
	if pool.NumWorkers() < 1 {
		t.Errorf("NumWorkers: got %d, want >= 1", pool.NumWorkers())
	}
}
