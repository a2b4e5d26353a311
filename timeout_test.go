package braceval

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/vk/braceval/internal/evalx"
)

// withStall registers a deliberately slow expression function on the
// evaluator's engine so timeout behavior can be driven deterministically.
func withStall(e *Evaluator, d time.Duration) {
	e.pipeline.Engine.RegisterFunction("stall", function.New(&function.Spec{
		Type: function.StaticReturnType(cty.Bool),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			time.Sleep(d)
			return cty.True, nil
		},
	}))
}

func TestEvaluate_TimeoutIsolation(t *testing.T) {
	e, err := New(Options{EvalTimeout: 20 * time.Millisecond})
	require.NoError(t, err)
	withStall(e, 500*time.Millisecond)

	// The timed-out interpolation alone degrades to empty; its siblings
	// still render.
	out, err := e.Evaluate(context.Background(), "a{stall()}b {name}", map[string]any{"name": "John"})
	require.NoError(t, err)
	require.Equal(t, "ab John", out)
}

func TestEvaluate_TimeoutStrict(t *testing.T) {
	e, err := New(Options{EvalTimeout: 20 * time.Millisecond, ThrowOnError: true})
	require.NoError(t, err)
	withStall(e, 500*time.Millisecond)

	_, err = e.Evaluate(context.Background(), "{stall()}", nil)
	require.Error(t, err)
	var ee *EvalError
	require.ErrorAs(t, err, &ee)
	var te *evalx.TimeoutError
	require.ErrorAs(t, err, &te)
}
