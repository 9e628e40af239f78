package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Result is the settled outcome of one phase task.
type Result struct {
	// Name labels the task, when the registration provided one.
	Name string
	// Err is the task's failure, nil on success. A skipped task (element
	// guard) settles with a nil error.
	Err error
	// Skipped reports that the task's element guard suppressed it.
	Skipped bool
	// Duration is the task's wall time from start to settle.
	Duration time.Duration
}

// Task is a unit of work submitted to Join.
type Task struct {
	Name string
	Run  PhaseFunc
}

// Join starts every task concurrently, in registration order, and waits for
// each to settle. No task failure aborts its siblings or the join itself:
// the caller receives one result per task, in task order, and decides what
// to do with failures. A panicking task settles as a failure.
func Join(ctx context.Context, tasks []Task) []Result {
	results := make([]Result, len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task) {
			defer wg.Done()
			start := time.Now()
			defer func() {
				if r := recover(); r != nil {
					results[i].Err = fmt.Errorf("task %q panicked: %v", task.Name, r)
					results[i].Duration = time.Since(start)
				}
			}()
			results[i].Name = task.Name
			results[i].Err = task.Run(ctx)
			results[i].Duration = time.Since(start)
		}(i, task)
	}
	wg.Wait()

	return results
}

// Failures filters results down to the failed tasks.
func Failures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
