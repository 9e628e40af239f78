package lifecycle

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJoin_AllTasksSettle(t *testing.T) {
	var completed atomic.Int32
	tasks := []Task{
		{Name: "a", Run: func(context.Context) error {
			completed.Add(1)
			return nil
		}},
		{Name: "b", Run: func(context.Context) error {
			time.Sleep(10 * time.Millisecond)
			completed.Add(1)
			return nil
		}},
		{Name: "c", Run: func(context.Context) error {
			completed.Add(1)
			return nil
		}},
	}

	results := Join(context.Background(), tasks)

	assert.Equal(t, int32(3), completed.Load())
	assert.Len(t, results, 3)
	assert.Equal(t, "a", results[0].Name)
	assert.Equal(t, "c", results[2].Name)
	assert.Empty(t, Failures(results))
}

func TestJoin_FailureDoesNotAbortSiblings(t *testing.T) {
	var completed atomic.Int32
	tasks := []Task{
		{Name: "ok1", Run: func(context.Context) error {
			completed.Add(1)
			return nil
		}},
		{Name: "bad", Run: func(context.Context) error {
			return errors.New("tween rejected")
		}},
		{Name: "ok2", Run: func(context.Context) error {
			time.Sleep(5 * time.Millisecond)
			completed.Add(1)
			return nil
		}},
	}

	results := Join(context.Background(), tasks)

	assert.Equal(t, int32(2), completed.Load())
	failed := Failures(results)
	assert.Len(t, failed, 1)
	assert.Equal(t, "bad", failed[0].Name)
}

func TestJoin_PanicSettlesAsFailure(t *testing.T) {
	tasks := []Task{
		{Name: "panics", Run: func(context.Context) error {
			panic("nil tween target")
		}},
		{Name: "fine", Run: func(context.Context) error { return nil }},
	}

	results := Join(context.Background(), tasks)

	assert.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "panicked")
	assert.NoError(t, results[1].Err)
}

func TestJoin_EmptyTaskList(t *testing.T) {
	assert.Empty(t, Join(context.Background(), nil))
}

func TestJoin_RecordsDurations(t *testing.T) {
	tasks := []Task{
		{Name: "slow", Run: func(context.Context) error {
			time.Sleep(20 * time.Millisecond)
			return nil
		}},
	}

	results := Join(context.Background(), tasks)
	assert.GreaterOrEqual(t, results[0].Duration, 20*time.Millisecond)
}
