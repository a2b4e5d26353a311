// Package evalx adapts the HCL expression language as the general-purpose
// expression evaluator behind the resolver pipeline. It parses expression
// source (optionally through an injected compile cache), evaluates it
// against a variable map, and converts values between Go and cty.
package evalx

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/vk/braceval/internal/cache"
	"github.com/vk/braceval/internal/ctxlog"
)

// SyntaxError reports an expression that failed to parse.
type SyntaxError struct {
	Source string
	Diags  hcl.Diagnostics
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid expression %q: %s", e.Source, e.Diags.Error())
}

// EvalError reports an expression that parsed but failed to evaluate.
type EvalError struct {
	Source string
	Diags  hcl.Diagnostics
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluating %q: %s", e.Source, e.Diags.Error())
}

// TimeoutError reports an evaluation cut off by the configured deadline.
type TimeoutError struct {
	Source  string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("evaluating %q: timed out after %s", e.Source, e.Timeout)
}

// Engine evaluates expression source strings. The zero value is not usable;
// construct with NewEngine. A nil compile cache disables parse caching.
type Engine struct {
	funcs   map[string]function.Function
	cache   *cache.Cache
	timeout time.Duration
}

// NewEngine creates an engine with the built-in function table. timeout
// bounds a single evaluation; zero means unbounded.
func NewEngine(compileCache *cache.Cache, timeout time.Duration) *Engine {
	return &Engine{
		funcs:   builtinFunctions(),
		cache:   compileCache,
		timeout: timeout,
	}
}

// RegisterFunction adds a function to the engine's table, overriding any
// built-in with the same name. Registration is not synchronized; callers
// register before the engine is shared.
func (e *Engine) RegisterFunction(name string, fn function.Function) {
	e.funcs[name] = fn
}

// Parse returns the compiled form of src, consulting the compile cache.
func (e *Engine) Parse(src string) (hcl.Expression, error) {
	const keyPrefix = "expr\x00"
	if cached, ok := e.cache.Get(keyPrefix + src); ok {
		return cached.(hcl.Expression), nil
	}
	expr, diags := hclsyntax.ParseExpression([]byte(src), "template", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, &SyntaxError{Source: src, Diags: diags}
	}
	e.cache.Put(keyPrefix+src, expr)
	return expr, nil
}

// ReferencedVariables returns the lowercased root names of every variable
// the expression references, or nil if the source does not parse.
func (e *Engine) ReferencedVariables(src string) []string {
	expr, err := e.Parse(src)
	if err != nil {
		return nil
	}
	seen := make(map[string]struct{})
	var names []string
	for _, traversal := range expr.Variables() {
		name := strings.ToLower(traversal.RootName())
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// Eval parses and evaluates src against the given variables. Variable names
// are matched as provided; callers register both original and lowercased
// spellings to mirror the case-insensitive context.
func (e *Engine) Eval(ctx context.Context, src string, vars map[string]cty.Value) (cty.Value, error) {
	expr, err := e.Parse(src)
	if err != nil {
		return cty.NilVal, err
	}

	evalCtx := &hcl.EvalContext{Variables: vars, Functions: e.funcs}

	if e.timeout <= 0 {
		return e.value(ctx, src, expr, evalCtx)
	}

	type outcome struct {
		val cty.Value
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := e.value(ctx, src, expr, evalCtx)
		done <- outcome{v, err}
	}()

	timer := time.NewTimer(e.timeout)
	defer timer.Stop()
	select {
	case out := <-done:
		return out.val, out.err
	case <-ctx.Done():
		return cty.NilVal, ctx.Err()
	case <-timer.C:
		ctxlog.FromContext(ctx).Warn("Expression evaluation timed out.", "expression", src, "timeout", e.timeout)
		return cty.NilVal, &TimeoutError{Source: src, Timeout: e.timeout}
	}
}

func (e *Engine) value(ctx context.Context, src string, expr hcl.Expression, evalCtx *hcl.EvalContext) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		logger.Debug("Expression evaluation produced diagnostics.", "expression", src, "error", diags.Error())
		return cty.NilVal, &EvalError{Source: src, Diags: diags}
	}
	return val, nil
}
