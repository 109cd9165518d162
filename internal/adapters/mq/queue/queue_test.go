package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/victoria/internal/domain/model"
)

func job(id string) model.Job {
	return model.Job{ID: id, Path: id + ".csv", Fingerprint: "fp-" + id, SubmittedAt: time.Now()}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if err := q.Enqueue(ctx, job("job1")); err != nil {
		t.Errorf("expected enqueue to succeed, got %v", err)
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.ID != "job1" {
		t.Errorf("expected job1, got %v", got.ID)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	var sizes []int
	q := NewInMemoryQueue(WithCapacity(2), WithGauge(func(size, capacity int) {
		if capacity != 2 {
			t.Errorf("expected capacity 2, got %d", capacity)
		}
		sizes = append(sizes, size)
	}))
	ctx := context.Background()

	if err := q.Enqueue(ctx, job("job1")); err != nil {
		t.Error("expected enqueue to succeed")
	}
	if err := q.Enqueue(ctx, job("job2")); err != nil {
		t.Error("expected enqueue to succeed")
	}
	if err := q.Enqueue(ctx, job("job3")); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
	if want := []int{0, 1, 2, 2}; fmt.Sprint(sizes) != fmt.Sprint(want) {
		t.Errorf("expected gauge updates %v, got %v", want, sizes)
	}
	if q.Capacity() != 2 {
		t.Errorf("expected capacity 2, got %d", q.Capacity())
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx := context.Background()

	const producers, perProducer = 10, 100
	var wg sync.WaitGroup
	for i := range producers {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range perProducer {
				for q.Enqueue(ctx, job(fmt.Sprintf("job%d_%d", id, j))) != nil {
					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}

	consumed := make(chan string, producers*perProducer)
	var cwg sync.WaitGroup
	for range 4 {
		cwg.Add(1)
		go func() {
			defer cwg.Done()
			for j := range q.Dequeue(ctx) {
				consumed <- j.ID
			}
		}()
	}

	wg.Wait()
	_ = q.Close()
	cwg.Wait()

	if n := len(consumed); n != producers*perProducer {
		t.Errorf("expected %d consumed jobs, got %d", producers*perProducer, n)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if err := q.Enqueue(ctx, job("job1")); err != nil {
		t.Error("expected enqueue to succeed")
	}
	if err := q.Enqueue(ctx, job("job2")); err != nil {
		t.Error("expected enqueue to succeed")
	}
	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}

	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}
	if err := q.Enqueue(ctx, job("job3")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	// queued jobs drain before the channel reports closed
	var ids []string
	for j := range q.Dequeue(ctx) {
		ids = append(ids, j.ID)
	}
	if fmt.Sprint(ids) != "[job1 job2]" {
		t.Errorf("expected both jobs drained, got %v", ids)
	}

	if err := q.Close(); err != nil {
		t.Errorf("expected second close to succeed, got error: %v", err)
	}
}
