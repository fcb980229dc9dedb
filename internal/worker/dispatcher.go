package worker

import (
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrBusy reports that the resource already has an operation in flight.
var ErrBusy = errors.New("resource busy")

// Dispatcher runs store-touching operations on a worker pool while keeping at
// most one operation in flight per logical resource, mirroring a disabled
// submit control until the previous result came back.
type Dispatcher struct {
	pool *ants.Pool

	mu   sync.Mutex
	busy map[string]bool
}

func NewDispatcher(size int) (*Dispatcher, error) {
	if size <= 0 {
		size = 16
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{pool: pool, busy: make(map[string]bool)}, nil
}

// Submit schedules task for the given resource key. A second submission for
// the same key while the first is still running fails with ErrBusy.
func (d *Dispatcher) Submit(resource string, task func()) error {
	d.mu.Lock()
	if d.busy[resource] {
		d.mu.Unlock()
		return ErrBusy
	}
	d.busy[resource] = true
	d.mu.Unlock()

	err := d.pool.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				zap.S().Errorf("worker task panic on %s: %v", resource, r)
			}
			d.mu.Lock()
			delete(d.busy, resource)
			d.mu.Unlock()
		}()
		task()
	})
	if err != nil {
		d.mu.Lock()
		delete(d.busy, resource)
		d.mu.Unlock()
		return err
	}
	return nil
}

// Busy reports whether the resource has an operation in flight.
func (d *Dispatcher) Busy(resource string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy[resource]
}

// Release stops the underlying pool.
func (d *Dispatcher) Release() {
	d.pool.Release()
}
