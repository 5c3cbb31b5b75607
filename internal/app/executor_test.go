package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-finder/internal/domain"
	"github.com/jsamuelsen/quote-finder/internal/platform/logging"
)

func countOperation(steps *[]ExecutionStep, failAt ExecutionStep) Operation[string, int, int, string] {
	record := func(step ExecutionStep) error {
		*steps = append(*steps, step)
		if step == failAt {
			return errors.New(string(step) + " broke")
		}

		return nil
	}

	return Operation[string, int, int, string]{
		Name: "count",
		Validate: func(_ context.Context, in string) error {
			if in == "" {
				return domain.NewValidationError("input", "cannot be empty")
			}

			return record(StepValidate)
		},
		Perform: func(_ context.Context, in string) (int, error) {
			return len(in), record(StepPerform)
		},
		Verify: func(_ context.Context, _ string, n int) (int, error) {
			return n * 2, record(StepVerify)
		},
		Archive: func(_ context.Context, _ string, _ int) error {
			return record(StepArchive)
		},
		Respond: func(_ context.Context, _ string, n int) (string, error) {
			return strconv.Itoa(n), record(StepRespond)
		},
	}
}

func TestExecute(t *testing.T) {
	all := []ExecutionStep{StepValidate, StepPerform, StepVerify, StepArchive, StepRespond}

	tests := []struct {
		name     string
		failAt   ExecutionStep
		expected []ExecutionStep
	}{
		{name: "all steps", expected: all},
		{name: "perform fails", failAt: StepPerform, expected: all[:2]},
		{name: "verify fails", failAt: StepVerify, expected: all[:3]},
		{name: "archive fails", failAt: StepArchive, expected: all[:4]},
		{name: "respond fails", failAt: StepRespond, expected: all},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var steps []ExecutionStep

			out, err := Execute(context.Background(), NewExecutor(discardLogger()), countOperation(&steps, tt.failAt), "abc")

			assert.Equal(t, tt.expected, steps)

			if tt.failAt == "" {
				require.NoError(t, err)
				assert.Equal(t, "6", out)

				return
			}

			require.Error(t, err)
			assert.Empty(t, out)

			step, ok := FailedStep(err)
			require.True(t, ok)
			assert.Equal(t, tt.failAt, step)

			var execErr *ExecutionError
			require.ErrorAs(t, err, &execErr)
			assert.Equal(t, "count", execErr.Operation)
		})
	}
}

func TestExecute_ValidationErrorStaysVisible(t *testing.T) {
	var steps []ExecutionStep

	_, err := Execute(context.Background(), NewExecutor(nil), countOperation(&steps, ""), "")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Empty(t, steps)
	assert.Contains(t, err.Error(), "count: validate failed")
}

func TestExecute_NilStepsSkipped(t *testing.T) {
	op := Operation[int, int, int, int]{Name: "empty"}

	out, err := Execute(context.Background(), NewExecutor(discardLogger()), op, 7)
	require.NoError(t, err)
	assert.Zero(t, out)
}

func TestExecute_UsesContextLogger(t *testing.T) {
	var own, scoped bytes.Buffer

	exec := NewExecutor(slog.New(slog.NewJSONHandler(&own, nil)))
	ctx := logging.WithContext(context.Background(), slog.New(slog.NewJSONHandler(&scoped, nil)))

	_, err := Execute(ctx, exec, Operation[int, int, int, int]{Name: "scoped"}, 1)
	require.NoError(t, err)

	assert.Empty(t, own.String())
	assert.Contains(t, scoped.String(), `"operation":"scoped"`)
}

func TestFailedStep_NotExecutionError(t *testing.T) {
	_, ok := FailedStep(errors.New("plain"))
	assert.False(t, ok)
}
