// Package async tracks the lifecycle of data fetched for a view.
package async

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Status is the lifecycle state of a Resource.
type Status int

const (
	Idle Status = iota
	Loading
	Success
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failed:
		return "error"
	default:
		return "unknown"
	}
}

// Resource holds the result of one fetch. A failed run keeps the data of
// the last successful run so a view can go on showing it.
type Resource[T any] struct {
	mu     sync.RWMutex
	status Status
	data   T
	hasAny bool
	err    error
}

// Run executes fn, moving the resource through Loading to Success or Failed.
func (r *Resource[T]) Run(ctx context.Context, fn func(ctx context.Context) (T, error)) error {
	r.mu.Lock()
	r.status = Loading
	r.err = nil
	r.mu.Unlock()

	data, err := fn(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.status = Failed
		r.err = err
		return err
	}
	r.status = Success
	r.data = data
	r.hasAny = true
	return nil
}

// Set stores data directly as a successful result.
func (r *Resource[T]) Set(data T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = Success
	r.data = data
	r.hasAny = true
	r.err = nil
}

// Status returns the current state.
func (r *Resource[T]) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// Data returns the last successful data and whether there is any.
func (r *Resource[T]) Data() (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data, r.hasAny
}

// Value returns the last successful data or the zero value.
func (r *Resource[T]) Value() T {
	d, _ := r.Data()
	return d
}

// Err returns the error of the last run, if it failed.
func (r *Resource[T]) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

// Loading reports whether a run is in flight.
func (r *Resource[T]) Loading() bool { return r.Status() == Loading }

// Empty reports whether there is nothing to show: not loading and no data.
func (r *Resource[T]) Empty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status != Loading && !r.hasAny
}

// Group runs several resource fetches concurrently. Unlike an errgroup with
// context, one failure does not cancel the others: each view region
// degrades on its own.
type Group struct {
	g errgroup.Group
}

// Go starts fn.
func (g *Group) Go(fn func() error) {
	g.g.Go(fn)
}

// Wait blocks until every fetch finished and returns the first error.
func (g *Group) Wait() error {
	return g.g.Wait()
}

// Fetch schedules r.Run(ctx, fn) on the group.
func Fetch[T any](ctx context.Context, g *Group, r *Resource[T], fn func(ctx context.Context) (T, error)) {
	g.Go(func() error { return r.Run(ctx, fn) })
}
