// Package optimistic applies a local change before the remote call that
// confirms it, and undoes the change when that call fails.
package optimistic

import "context"

// Do runs apply, then attempt. If attempt fails, revert runs and the error
// is returned. Callers capture whatever revert needs before calling Do.
func Do(ctx context.Context, apply func(), attempt func(context.Context) error, revert func()) error {
	apply()
	if err := attempt(ctx); err != nil {
		revert()
		return err
	}
	return nil
}

// Swap is a single value with a getter and setter, such as one field of a
// cached record.
type Swap[T any] struct {
	Get func() T
	Set func(T)
}

// To sets next, runs attempt, and restores the previous value on failure.
func (s Swap[T]) To(ctx context.Context, next T, attempt func(context.Context) error) error {
	prev := s.Get()
	return Do(ctx, func() { s.Set(next) }, attempt, func() { s.Set(prev) })
}
