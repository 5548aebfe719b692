package ecs

import "sync"

// CommandQueue collects structural mutations deferred while systems iterate
// the component arrays. Systems append through ExecutionContext.Defer; the
// scheduler flushes the queue into the world once no view is walking the
// arrays. Rollback marks let a failed system's commands be discarded before
// a retry.
type CommandQueue struct {
	pending []Command
}

// NewCommandQueue creates an empty queue.
func NewCommandQueue() *CommandQueue {
	return &CommandQueue{}
}

// Len reports how many commands are pending.
func (q *CommandQueue) Len() int {
	return len(q.pending)
}

// Defer appends a command. Nil commands are ignored.
func (q *CommandQueue) Defer(cmd Command) {
	if cmd == nil {
		return
	}
	q.pending = append(q.pending, cmd)
}

// Snapshot returns a rollback mark at the current queue position.
func (q *CommandQueue) Snapshot() int {
	return len(q.pending)
}

// Rollback discards every command deferred after the mark.
func (q *CommandQueue) Rollback(mark int) {
	if mark < 0 {
		mark = 0
	}
	if mark >= len(q.pending) {
		return
	}
	q.pending = q.pending[:mark]
}

// Flush applies the pending commands to the world in deferral order and
// empties the queue, returning how many applied. The first failing command
// aborts the flush; the commands queued after it are dropped with it.
func (q *CommandQueue) Flush(world *World) (int, error) {
	applied := 0
	for _, cmd := range q.pending {
		if err := cmd.Apply(world); err != nil {
			q.pending = q.pending[:0]
			return applied, err
		}
		applied++
	}
	q.pending = q.pending[:0]
	return applied, nil
}

// CommandQueuePool recycles queues across ticks and async group runs.
type CommandQueuePool struct {
	pool sync.Pool
}

// NewCommandQueuePool constructs a pool that hands out empty queues.
func NewCommandQueuePool() *CommandQueuePool {
	p := &CommandQueuePool{}
	p.pool.New = func() any { return NewCommandQueue() }
	return p
}

// Get retrieves an empty queue from the pool.
func (p *CommandQueuePool) Get() *CommandQueue {
	return p.pool.Get().(*CommandQueue)
}

// Put returns a queue to the pool, dropping whatever it still holds.
func (p *CommandQueuePool) Put(q *CommandQueue) {
	if q == nil {
		return
	}
	q.pending = q.pending[:0]
	p.pool.Put(q)
}
