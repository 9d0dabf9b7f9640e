package jobs

import (
	"context"
	"log"
	"sync"
)

// Task is a unit of background work.
type Task func(ctx context.Context) error

type job struct {
	name string
	task Task
}

// Queue runs tasks on a fixed pool of workers. Tasks that fail are logged
// and dropped.
type Queue struct {
	jobs    chan job
	workers int
	logger  *log.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
	closed bool
}

func NewQueue(workers, size int, logger *log.Logger) *Queue {
	if workers < 1 {
		workers = 1
	}
	if size < 1 {
		size = 1
	}
	return &Queue{
		jobs:    make(chan job, size),
		workers: workers,
		logger:  logger,
	}
}

func (q *Queue) Start(ctx context.Context) {
	ctx, q.cancel = context.WithCancel(ctx)
	q.logger.Printf("[QUEUE] Started %d workers", q.workers)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work(ctx, i)
	}
}

func (q *Queue) work(ctx context.Context, id int) {
	defer q.wg.Done()
	for j := range q.jobs {
		if err := q.run(ctx, j); err != nil {
			q.logger.Printf("[QUEUE] worker %d: task %s failed: %v", id, j.name, err)
		}
	}
}

func (q *Queue) run(ctx context.Context, j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Printf("[QUEUE] task %s panicked: %v", j.name, r)
		}
	}()
	return j.task(ctx)
}

// Enqueue schedules a task without blocking. It returns false when the
// queue is full or stopped.
func (q *Queue) Enqueue(name string, task Task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	select {
	case q.jobs <- job{name: name, task: task}:
		return true
	default:
		q.logger.Printf("[QUEUE] queue full, dropping task %s", name)
		return false
	}
}

// Stop drains queued tasks and waits for the workers to exit.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
	if q.cancel != nil {
		q.cancel()
	}
	q.logger.Println("[QUEUE] Stopped")
}
