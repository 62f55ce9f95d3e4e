package service

import (
	"context"
	"log"
	"sync"
	"time"
)

// Task is one post-commit side effect: history logging, cache invalidation,
// webhook announcements. Tasks run after the primary transaction committed;
// a failing task is logged and never reaches the user that triggered it.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Outbox processes post-commit tasks on a background worker. It replaces
// ad-hoc goroutines racing the response: effects are enqueued once the
// transaction is durable and observable only through logs when they fail.
type Outbox struct {
	tasks       chan Task
	taskTimeout time.Duration

	mu       sync.Mutex
	closed   bool
	stopOnce sync.Once
	done     chan struct{}
}

// NewOutbox creates an outbox with the given queue capacity and starts its
// worker.
func NewOutbox(capacity int) *Outbox {
	if capacity <= 0 {
		capacity = 256
	}
	o := &Outbox{
		tasks:       make(chan Task, capacity),
		taskTimeout: 10 * time.Second,
		done:        make(chan struct{}),
	}
	go o.run()
	return o
}

// Enqueue submits a task. Never blocks: when the queue is full the task is
// dropped with a log line, because a slow side channel must not stall the
// request path.
func (o *Outbox) Enqueue(task Task) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		log.Printf("[Outbox] rejected task %q: outbox closed", task.Name)
		return
	}

	select {
	case o.tasks <- task:
	default:
		log.Printf("[Outbox] queue full, dropped task %q", task.Name)
	}
}

// run executes tasks until the queue is closed and drained.
func (o *Outbox) run() {
	defer close(o.done)

	for task := range o.tasks {
		ctx, cancel := context.WithTimeout(context.Background(), o.taskTimeout)
		if err := task.Run(ctx); err != nil {
			log.Printf("[Outbox] task %q failed: %v", task.Name, err)
		}
		cancel()
	}
}

// Close stops accepting tasks, drains the queue and waits for the worker.
func (o *Outbox) Close() {
	o.stopOnce.Do(func() {
		o.mu.Lock()
		o.closed = true
		close(o.tasks)
		o.mu.Unlock()

		<-o.done
	})
}

// Drain waits until every task enqueued so far has run. Test helper.
func (o *Outbox) Drain() {
	signal := make(chan struct{})
	o.Enqueue(Task{Name: "drain", Run: func(ctx context.Context) error {
		close(signal)
		return nil
	}})
	<-signal
}
