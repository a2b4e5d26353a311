package braceval_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vk/braceval"
)

func newEvaluator(t *testing.T, opts braceval.Options) *braceval.Evaluator {
	t.Helper()
	e, err := braceval.New(opts)
	require.NoError(t, err)
	return e
}

func TestEvaluate_Basics(t *testing.T) {
	ctx := context.Background()

	t.Run("plain text round-trips", func(t *testing.T) {
		out, err := braceval.Evaluate(ctx, "no placeholders here", nil)
		require.NoError(t, err)
		require.Equal(t, "no placeholders here", out)
	})

	t.Run("simple substitution", func(t *testing.T) {
		out, err := braceval.Evaluate(ctx, "Hello, {name}!", map[string]any{"name": "John"})
		require.NoError(t, err)
		require.Equal(t, "Hello, John!", out)
	})

	t.Run("case-insensitive lookup", func(t *testing.T) {
		out, err := braceval.Evaluate(ctx, "{NAME}", map[string]any{"name": "John"})
		require.NoError(t, err)
		require.Equal(t, "John", out)
	})

	t.Run("escaped braces", func(t *testing.T) {
		out, err := braceval.Evaluate(ctx, "{{not expr}} but {name}", map[string]any{"name": "John"})
		require.NoError(t, err)
		require.Equal(t, "{not expr} but John", out)
	})

	t.Run("struct data", func(t *testing.T) {
		type user struct {
			Name string
			Age  int
		}
		out, err := braceval.Evaluate(ctx, "{name} is {age}", &user{Name: "Ada", Age: 36})
		require.NoError(t, err)
		require.Equal(t, "Ada is 36", out)
	})

	t.Run("nested property and indexer", func(t *testing.T) {
		data := map[string]any{
			"user": map[string]any{"address": map[string]any{"city": "Lviv"}},
			"arr":  []any{10, 20, 30},
		}
		out, err := braceval.Evaluate(ctx, "{user.address.city}: {arr[0]}-{arr[^1]}", data)
		require.NoError(t, err)
		require.Equal(t, "Lviv: 10-30", out)
	})
}

func TestEvaluate_Expressions(t *testing.T) {
	ctx := context.Background()
	data := map[string]any{"a": 5, "b": 3}

	out, err := braceval.Evaluate(ctx, "{a + b * 2}", data)
	require.NoError(t, err)
	require.Equal(t, "11", out)

	out, err = braceval.Evaluate(ctx, `{a > b ? "yes" : "no"}`, data)
	require.NoError(t, err)
	require.Equal(t, "yes", out)
}

func TestEvaluate_CollectionMethods(t *testing.T) {
	ctx := context.Background()
	data := map[string]any{
		"numbers": []any{1, 2, 3, 4},
		"items": []any{
			map[string]any{"name": "pen", "price": 2.5},
			map[string]any{"name": "desk", "price": 120.0},
		},
	}

	out, err := braceval.Evaluate(ctx, "{numbers.Sum()} {numbers.Count()}", data)
	require.NoError(t, err)
	require.Equal(t, "10 4", out)

	out, err = braceval.Evaluate(ctx, `{items.Where(x => x.price > 10).Select(x => x.name).Join(", ")}`, data)
	require.NoError(t, err)
	require.Equal(t, "desk", out)
}

func TestEvaluate_Formatting(t *testing.T) {
	ctx := context.Background()

	t.Run("currency with alignment", func(t *testing.T) {
		out, err := braceval.Evaluate(ctx, "{price,10:C2}", map[string]any{"price": 1234.5})
		require.NoError(t, err)
		require.Equal(t, " $1,234.50", out)
	})

	t.Run("left alignment", func(t *testing.T) {
		out, err := braceval.Evaluate(ctx, "[{name,-6}]", map[string]any{"name": "ab"})
		require.NoError(t, err)
		require.Equal(t, "[ab    ]", out)
	})

	t.Run("date pattern", func(t *testing.T) {
		when := time.Date(2024, 3, 15, 9, 5, 7, 0, time.UTC)
		out, err := braceval.Evaluate(ctx, "{when:yyyy-MM-dd}", map[string]any{"when": when})
		require.NoError(t, err)
		require.Equal(t, "2024-03-15", out)
	})

	t.Run("culture-specific separators", func(t *testing.T) {
		e := newEvaluator(t, braceval.Options{Culture: "de-DE"})
		out, err := e.Evaluate(ctx, "{price:F2}", map[string]any{"price": 1234.5})
		require.NoError(t, err)
		require.Equal(t, "1234,50", out)
	})
}

func TestEvaluate_DollarSyntax(t *testing.T) {
	ctx := context.Background()
	data := map[string]any{"name": "John"}

	t.Run("dollar mode", func(t *testing.T) {
		e := newEvaluator(t, braceval.Options{SupportDollarSignSyntax: true})
		out, err := e.Evaluate(ctx, "${name} and {name}", data)
		require.NoError(t, err)
		require.Equal(t, "John and {name}", out)
	})

	t.Run("brace mode leaves dollar spans alone", func(t *testing.T) {
		out, err := braceval.Evaluate(ctx, "${name} and {name}", data)
		require.NoError(t, err)
		require.Equal(t, "${name} and John", out)
	})
}

func TestEvaluate_MissingData(t *testing.T) {
	ctx := context.Background()

	t.Run("permissive renders empty", func(t *testing.T) {
		out, err := braceval.Evaluate(ctx, "x{missing}y", map[string]any{})
		require.NoError(t, err)
		require.Equal(t, "xy", out)
	})

	t.Run("unexported field is missing data", func(t *testing.T) {
		data := map[string]any{"u": struct{ name string }{name: "x"}}
		out, err := braceval.Evaluate(ctx, "x{u.name}y", data)
		require.NoError(t, err)
		require.Equal(t, "xy", out)
	})

	t.Run("missing value ignores alignment", func(t *testing.T) {
		out, err := braceval.Evaluate(ctx, "x{missing,10}y", map[string]any{})
		require.NoError(t, err)
		require.Equal(t, "xy", out)
	})

	t.Run("strict throws with suggestions", func(t *testing.T) {
		e := newEvaluator(t, braceval.Options{ThrowOnMissingParameter: true})
		_, err := e.Evaluate(ctx, "{nmae}", map[string]any{"name": "John"})
		require.Error(t, err)
		var re *braceval.ResolveError
		require.ErrorAs(t, err, &re)
		require.Equal(t, "nmae", re.Expression)
		require.Contains(t, re.Suggestions, "name")
	})
}

func TestEvaluate_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unterminated expression is always fatal", func(t *testing.T) {
		_, err := braceval.Evaluate(ctx, "abc{name", nil)
		require.Error(t, err)
		var pe *braceval.ParseError
		require.ErrorAs(t, err, &pe)
		require.Equal(t, 3, pe.Offset)
	})

	t.Run("bad expression renders empty by default", func(t *testing.T) {
		out, err := braceval.Evaluate(ctx, "x{a +}y", map[string]any{"a": 1})
		require.NoError(t, err)
		require.Equal(t, "xy", out)
	})

	t.Run("bad expression throws under ThrowOnError", func(t *testing.T) {
		e := newEvaluator(t, braceval.Options{ThrowOnError: true})
		_, err := e.Evaluate(ctx, "{a +}", map[string]any{"a": 1})
		require.Error(t, err)
		var ee *braceval.EvalError
		require.ErrorAs(t, err, &ee)
	})

	t.Run("bad specifier falls back by default", func(t *testing.T) {
		out, err := braceval.Evaluate(ctx, "{name:C2}", map[string]any{"name": "abc"})
		require.NoError(t, err)
		require.Equal(t, "abc", out)
	})

	t.Run("bad specifier throws under ThrowOnError", func(t *testing.T) {
		e := newEvaluator(t, braceval.Options{ThrowOnError: true})
		_, err := e.Evaluate(ctx, "{name:C2}", map[string]any{"name": "abc"})
		require.Error(t, err)
		var fe *braceval.FormatError
		require.ErrorAs(t, err, &fe)
		require.Equal(t, "C2", fe.Specifier)
	})

	t.Run("error handler substitutes", func(t *testing.T) {
		e := newEvaluator(t, braceval.Options{
			ThrowOnMissingParameter: true,
			ErrorHandler: func(expr string, err error) (string, bool) {
				return "[N/A]", true
			},
		})
		out, err := e.Evaluate(ctx, "{missing}", map[string]any{})
		require.NoError(t, err)
		require.Equal(t, "[N/A]", out)
	})

	t.Run("declining error handler restores throw", func(t *testing.T) {
		e := newEvaluator(t, braceval.Options{
			ThrowOnMissingParameter: true,
			ErrorHandler: func(expr string, err error) (string, bool) {
				return "", false
			},
		})
		_, err := e.Evaluate(ctx, "{missing}", map[string]any{})
		require.Error(t, err)
	})
}

func TestEvaluate_GlobalData(t *testing.T) {
	ctx := context.Background()
	e := newEvaluator(t, braceval.Options{
		GlobalData: map[string]any{"site": "example.org", "name": "Default"},
	})

	out, err := e.Evaluate(ctx, "{name}@{site}", map[string]any{"name": "John"})
	require.NoError(t, err)
	require.Equal(t, "John@example.org", out)
}

func TestEvaluate_VariableResolver(t *testing.T) {
	ctx := context.Background()
	e := newEvaluator(t, braceval.Options{
		VariableResolver: func(name string, data any) any {
			if name == "hostname" {
				return "db01"
			}
			return nil
		},
	})

	out, err := e.Evaluate(ctx, "{hostname}:{port}", map[string]any{"port": 5432})
	require.NoError(t, err)
	require.Equal(t, "db01:5432", out)
}

func TestEvaluate_CacheIdempotence(t *testing.T) {
	ctx := context.Background()
	e := newEvaluator(t, braceval.Options{UseCache: true})
	data := map[string]any{"name": "John"}

	first, err := e.Evaluate(ctx, "Hello, {name}!", data)
	require.NoError(t, err)
	second, err := e.Evaluate(ctx, "Hello, {name}!", data)
	require.NoError(t, err)
	require.Equal(t, first, second)

	stats := e.CacheStats()
	require.Greater(t, stats.Hits, uint64(0))
}

func TestEvaluateBatch(t *testing.T) {
	ctx := context.Background()
	e := newEvaluator(t, braceval.Options{ThrowOnMissingParameter: true})

	results, err := e.EvaluateBatch(ctx, map[string]string{
		"greeting": "Hello, {name}!",
		"broken":   "{missing}",
	}, map[string]any{"name": "John"})

	require.Equal(t, "Hello, John!", results["greeting"])
	require.Error(t, err)
	var be *braceval.BatchError
	require.ErrorAs(t, err, &be)
	require.Equal(t, "broken", be.Key)
	require.NotContains(t, results, "broken")
}

func TestEvaluateAsync(t *testing.T) {
	ctx := context.Background()
	e := newEvaluator(t, braceval.Options{})

	ch := e.EvaluateAsync(ctx, "Hello, {name}!", map[string]any{"name": "John"})
	select {
	case r := <-ch:
		require.NoError(t, r.Err)
		require.Equal(t, "Hello, John!", r.Output)
	case <-time.After(5 * time.Second):
		t.Fatal("async evaluation did not complete")
	}
}

func TestEvaluateTyped(t *testing.T) {
	ctx := context.Background()
	e := newEvaluator(t, braceval.Options{})
	data := map[string]any{"count": 42, "ratio": 0.5, "on": true}

	n, err := braceval.EvaluateTyped[int](ctx, e, "{count}", data)
	require.NoError(t, err)
	require.Equal(t, 42, n)

	f, err := braceval.EvaluateTyped[float64](ctx, e, "{ratio}", data)
	require.NoError(t, err)
	require.Equal(t, 0.5, f)

	b, err := braceval.EvaluateTyped[bool](ctx, e, "{on}", data)
	require.NoError(t, err)
	require.True(t, b)

	_, err = braceval.EvaluateTyped[int](ctx, e, "{count} items", data)
	require.Error(t, err)
}

func TestEvaluator_ConcurrentUse(t *testing.T) {
	ctx := context.Background()
	e := newEvaluator(t, braceval.Options{UseCache: true})

	done := make(chan error, 20)
	for i := 0; i < 20; i++ {
		go func() {
			out, err := e.Evaluate(ctx, "Hello, {name}!", map[string]any{"name": "John"})
			if err == nil && out != "Hello, John!" {
				err = errors.New("unexpected output: " + out)
			}
			done <- err
		}()
	}
	for i := 0; i < 20; i++ {
		require.NoError(t, <-done)
	}
}
