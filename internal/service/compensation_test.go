package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunTransactionSuccessRunsNoCompensation(t *testing.T) {
	var compensated []string

	err := RunTransaction(context.Background(), func(ctx context.Context, scope *CompensationScope) error {
		for _, name := range []string{"a", "b", "c"} {
			name := name
			step, err := scope.Execute(ctx, func(context.Context) error { return nil })
			require.NoError(t, err)
			step.Compensate(func(context.Context) error {
				compensated = append(compensated, name)
				return nil
			})
		}
		return nil
	})

	require.NoError(t, err)
	assert.Empty(t, compensated)
}

func TestRunTransactionUnwindsInReverseOrder(t *testing.T) {
	var compensated []string
	boom := errors.New("step d failed")

	err := RunTransaction(context.Background(), func(ctx context.Context, scope *CompensationScope) error {
		for _, name := range []string{"a", "b", "c"} {
			name := name
			step, err := scope.Execute(ctx, func(context.Context) error { return nil })
			require.NoError(t, err)
			step.Compensate(func(context.Context) error {
				compensated = append(compensated, name)
				return nil
			})
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"c", "b", "a"}, compensated)
}

func TestRunTransactionKeepsOriginalErrorWhenCompensationFails(t *testing.T) {
	var compensated []string
	boom := errors.New("forward failure")

	err := RunTransaction(context.Background(), func(ctx context.Context, scope *CompensationScope) error {
		step, err := scope.Execute(ctx, func(context.Context) error { return nil })
		require.NoError(t, err)
		step.Compensate(func(context.Context) error {
			compensated = append(compensated, "a")
			return nil
		})

		step, err = scope.Execute(ctx, func(context.Context) error { return nil })
		require.NoError(t, err)
		step.Compensate(func(context.Context) error {
			return errors.New("inverse b failed")
		})

		return boom
	})

	// the failing inverse is logged and skipped; the rest of the stack drains
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a"}, compensated)
}

func TestRunTransactionStopsAtFirstFailedStep(t *testing.T) {
	var compensated []string
	boom := errors.New("step b failed")

	err := RunTransaction(context.Background(), func(ctx context.Context, scope *CompensationScope) error {
		step, err := scope.Execute(ctx, func(context.Context) error { return nil })
		require.NoError(t, err)
		step.Compensate(func(context.Context) error {
			compensated = append(compensated, "a")
			return nil
		})

		if _, err := scope.Execute(ctx, func(context.Context) error { return boom }); err != nil {
			return err
		}
		t.Fatal("unreachable")
		return nil
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a"}, compensated)
}

func TestRollbackAllIsIdempotent(t *testing.T) {
	scope := NewCompensationScope()
	calls := 0

	step, err := scope.Execute(context.Background(), func(context.Context) error { return nil })
	require.NoError(t, err)
	step.Compensate(func(context.Context) error {
		calls++
		return nil
	})

	scope.RollbackAll(context.Background())
	scope.RollbackAll(context.Background())

	assert.Equal(t, 1, calls)
}

func TestExecuteResultCompensateWithReceivesValue(t *testing.T) {
	var seen int
	boom := errors.New("later failure")

	err := RunTransaction(context.Background(), func(ctx context.Context, scope *CompensationScope) error {
		result, err := Execute(ctx, scope, func(context.Context) (int, error) { return 42, nil })
		require.NoError(t, err)
		v := result.CompensateWith(func(_ context.Context, got int) error {
			seen = got
			return nil
		})
		assert.Equal(t, 42, v)
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 42, seen)
}

func TestScopeIDsAreDistinct(t *testing.T) {
	a := NewCompensationScope()
	b := NewCompensationScope()
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}
