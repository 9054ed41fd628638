package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// CompensationScope pairs every committed forward step of a multi-resource
// operation with an inverse action, and unwinds the inverses in reverse
// (LIFO) order when a later step fails. It provides best-effort semantic
// undo, not atomicity: each forward step has already committed at its own
// resource boundary by the time the next one runs.
//
// A scope serves exactly one logical workflow execution and is not shared
// across goroutines.
type CompensationScope struct {
	id      string
	stack   []func(context.Context) error
	drained bool
}

func NewCompensationScope() *CompensationScope {
	return &CompensationScope{id: uuid.NewString()}
}

// ID is the correlation id carried into every rollback log line.
func (s *CompensationScope) ID() string { return s.id }

func (s *CompensationScope) register(inverse func(context.Context) error) {
	s.stack = append(s.stack, inverse)
}

// Execute runs a forward action that produces no value. The returned Step
// registers the inverse; read-only steps simply ignore it.
func (s *CompensationScope) Execute(ctx context.Context, action func(context.Context) error) (Step, error) {
	if err := action(ctx); err != nil {
		return Step{}, err
	}
	return Step{scope: s}, nil
}

// Step is a completed forward action awaiting its inverse registration.
type Step struct {
	scope *CompensationScope
}

func (st Step) Compensate(inverse func(context.Context) error) {
	st.scope.register(inverse)
}

// Execute runs a value-producing forward action inside the scope. The result
// must have its inverse registered immediately if the action mutated anything.
func Execute[T any](ctx context.Context, s *CompensationScope, action func(context.Context) (T, error)) (Result[T], error) {
	v, err := action(ctx)
	if err != nil {
		return Result[T]{}, err
	}
	return Result[T]{Value: v, scope: s}, nil
}

// Result is the outcome of a value-producing forward action.
type Result[T any] struct {
	Value T
	scope *CompensationScope
}

// Compensate registers an inverse that does not need the forward result.
func (r Result[T]) Compensate(inverse func(context.Context) error) T {
	r.scope.register(inverse)
	return r.Value
}

// CompensateWith registers an inverse parameterized by the forward result.
func (r Result[T]) CompensateWith(inverse func(context.Context, T) error) T {
	v := r.Value
	r.scope.register(func(ctx context.Context) error { return inverse(ctx, v) })
	return v
}

// RollbackAll pops and invokes every registered inverse in reverse order of
// registration, exactly once each. An inverse that fails is logged with the
// scope's correlation id and skipped: the unwind always drains the whole
// stack, because a partially-run rollback is worse than a fully-run one with
// some failures. A second call is a no-op.
func (s *CompensationScope) RollbackAll(ctx context.Context) {
	if s.drained {
		return
	}
	s.drained = true

	for i := len(s.stack) - 1; i >= 0; i-- {
		if err := s.stack[i](ctx); err != nil {
			slog.ErrorContext(ctx, "compensation failed, resource may be inconsistent",
				"scope_id", s.id,
				"step", i,
				"error", err,
			)
		}
	}
	s.stack = nil
}

// RunTransaction creates a fresh scope, runs block against it, and on failure
// unwinds every registered inverse before returning the original error.
// Rollback failures never replace the triggering error.
func RunTransaction(ctx context.Context, block func(context.Context, *CompensationScope) error) error {
	scope := NewCompensationScope()
	if err := block(ctx, scope); err != nil {
		scope.RollbackAll(ctx)
		return err
	}
	return nil
}
