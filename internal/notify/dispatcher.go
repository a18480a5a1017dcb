package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/detoxsabeho/orders-backend/pkg/logger"
)

// Task is one named side effect to run after the HTTP response has been
// written, such as a confirmation email or a conversion event.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Dispatcher runs tasks in the background, detached from the request
// context. Failures are aggregated and logged but never reach the client;
// an order is durable the moment the ledger write returns.
type Dispatcher struct {
	logg    *logger.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher builds a dispatcher with a per-batch timeout.
func NewDispatcher(timeout time.Duration, logg *logger.Logger) (*Dispatcher, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Dispatcher{logg: logg, timeout: timeout}, nil
}

// Dispatch schedules the tasks and returns immediately. The tasks share one
// background context that expires after the configured timeout; it is not
// derived from the request context, which is already canceled by the time
// they run.
func (d *Dispatcher) Dispatch(tasks ...Task) {
	runnable := make([]Task, 0, len(tasks))
	for _, task := range tasks {
		if task.Run != nil {
			runnable = append(runnable, task)
		}
	}
	if len(runnable) == 0 {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		var errs error
		for _, task := range runnable {
			if err := task.Run(ctx); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", task.Name, err))
				d.logg.Error(d.logg.WithField(ctx, "task", task.Name), "background task failed", err)
			}
		}
		if errs == nil {
			d.logg.Info(d.logg.WithField(ctx, "tasks", len(runnable)), "background tasks completed")
		}
	}()
}

// Wait blocks until every dispatched batch has finished. Used on shutdown
// and in tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
