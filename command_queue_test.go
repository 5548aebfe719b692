package ecs_test

import (
	"testing"

	"github.com/voxelforge/ecs"
)

func TestCommandQueueDeferAndFlush(t *testing.T) {
	world := ecs.NewWorld()
	queue := ecs.NewCommandQueue()

	created := ecs.InvalidEntity
	queue.Defer(ecs.NewCreateEntityCommand(&created))
	queue.Defer(nil)
	if queue.Len() != 1 {
		t.Fatalf("expected 1 pending command, got %d", queue.Len())
	}

	applied, err := queue.Flush(world)
	if err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if applied != 1 {
		t.Fatalf("expected 1 applied command, got %d", applied)
	}
	if queue.Len() != 0 {
		t.Fatalf("expected queue emptied after flush, got %d", queue.Len())
	}
	if created == ecs.InvalidEntity || !world.IsAlive(created) {
		t.Fatalf("deferred create did not produce a live entity: %v", created)
	}
}

func TestCommandQueueRollbackDiscardsAfterMark(t *testing.T) {
	queue := ecs.NewCommandQueue()
	queue.Defer(ecs.NewCreateEntityCommand(nil))

	mark := queue.Snapshot()
	queue.Defer(ecs.NewCreateEntityCommand(nil))
	queue.Defer(ecs.NewCreateEntityCommand(nil))
	queue.Rollback(mark)

	if queue.Len() != 1 {
		t.Fatalf("expected rollback to keep 1 command, got %d", queue.Len())
	}

	queue.Rollback(-1)
	if queue.Len() != 0 {
		t.Fatalf("expected negative mark to clear the queue, got %d", queue.Len())
	}
}

func TestCommandQueueFlushStopsAtFirstFailure(t *testing.T) {
	world := ecs.NewWorld()
	stale := world.CreateEntity()
	world.DestroyEntity(stale)

	queue := ecs.NewCommandQueue()
	queue.Defer(ecs.NewDestroyEntityCommand(stale))
	created := ecs.InvalidEntity
	queue.Defer(ecs.NewCreateEntityCommand(&created))

	applied, err := queue.Flush(world)
	if err == nil {
		t.Fatal("expected flush to fail on the stale destroy")
	}
	if applied != 0 {
		t.Fatalf("expected no commands applied, got %d", applied)
	}
	if created != ecs.InvalidEntity {
		t.Fatal("command after the failure must not run")
	}
	if queue.Len() != 0 {
		t.Fatalf("expected queue cleared after failed flush, got %d", queue.Len())
	}
}

func TestCommandQueuePoolHandsOutEmptyQueues(t *testing.T) {
	pool := ecs.NewCommandQueuePool()

	queue := pool.Get()
	queue.Defer(ecs.NewCreateEntityCommand(nil))
	pool.Put(queue)

	if got := pool.Get(); got.Len() != 0 {
		t.Fatalf("expected recycled queue to be empty, got %d pending", got.Len())
	}
}
