package notification

import (
	"context"
	"errors"
)

// Emitter receives booking lifecycle events. Callers treat delivery as best
// effort: an error is reported but never undoes the transition.
type Emitter interface {
	Emit(ctx context.Context, e Event) error
}

// MultiEmitter delivers every event to each of its emitters in order and
// joins their errors.
type MultiEmitter []Emitter

func (m MultiEmitter) Emit(ctx context.Context, e Event) error {
	var errs []error
	for _, em := range m {
		if em == nil {
			continue
		}
		if err := em.Emit(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NopEmitter discards events.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, Event) error { return nil }
