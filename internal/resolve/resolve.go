// Package resolve turns expression text into values through a fixed tier
// order: host resolver callback, direct member/index walking, the
// collection fast path, and finally the general expression engine. Tier
// chaining is explicit branching over tagged results; no tier communicates
// by panic or sentinel exceptions.
package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/braceval/internal/ctxlog"
	"github.com/vk/braceval/internal/evalx"
	"github.com/vk/braceval/internal/vars"
)

// Kind tags the outcome of a resolution.
type Kind int

const (
	// KindValue means a tier produced a value.
	KindValue Kind = iota
	// KindMissing means no tier could produce a value; by default this
	// renders as an empty string.
	KindMissing
	// KindFatal means evaluation failed in a way that is an error under
	// strict options.
	KindFatal
)

// Result is the tagged outcome of resolving one expression.
type Result struct {
	Kind        Kind
	Value       any
	Err         error
	Suggestions []string
}

func value(v any) Result     { return Result{Kind: KindValue, Value: v} }
func fatal(err error) Result { return Result{Kind: KindFatal, Err: err} }

// ResolverFunc is the host-supplied custom resolver callback. It receives a
// resolver-friendly name (the root identifier of the expression) and the
// caller's raw data object; a non-nil return is authoritative for that root.
type ResolverFunc func(name string, data any) any

// Pipeline resolves expression text against a variable context.
type Pipeline struct {
	Engine   *evalx.Engine
	Resolver ResolverFunc
}

// Resolve runs the tier chain for one expression.
func (p *Pipeline) Resolve(ctx context.Context, expr string, vc *vars.Context) Result {
	logger := ctxlog.FromContext(ctx)

	if p.Resolver != nil {
		if root := rootName(expr); root != "" {
			if v := p.Resolver(root, vc.Raw()); v != nil {
				logger.Debug("Custom resolver supplied a value.", "root", root, "expression", expr)
				if strings.TrimSpace(expr) == root {
					return value(v)
				}
				// The expression is more than the bare root; re-run the
				// remaining tiers with the resolved root layered on top.
				if r := p.resolveTiers(ctx, expr, vc.With(root, v)); r.Kind == KindValue {
					return r
				}
			}
		}
	}

	return p.resolveTiers(ctx, expr, vc)
}

func (p *Pipeline) resolveTiers(ctx context.Context, expr string, vc *vars.Context) Result {
	logger := ctxlog.FromContext(ctx)

	if path, ok := parsePath(expr); ok {
		v, found := walkPath(path, vc)
		if found {
			return value(v)
		}
		// A syntactically direct access with an absent segment is missing
		// data, not an evaluation error; later tiers could not do better.
		logger.Debug("Direct access found no value.", "expression", expr)
		return Result{
			Kind:        KindMissing,
			Err:         fmt.Errorf("unresolved expression %q", expr),
			Suggestions: suggest(path[0].text, vc.Names()),
		}
	}

	if r, applicable := p.fastPath(ctx, expr, vc); applicable {
		logger.Debug("Collection fast path handled expression.", "expression", expr)
		return r
	}

	return p.evalTier(ctx, expr, vc)
}

// evalTier hands the expression to the general expression engine.
func (p *Pipeline) evalTier(ctx context.Context, expr string, vc *vars.Context) Result {
	ctyVars := p.buildVars(ctx, vc)

	if refs := p.Engine.ReferencedVariables(expr); len(refs) > 0 {
		var absent []string
		for _, name := range refs {
			if _, ok := ctyVars[name]; !ok {
				absent = append(absent, name)
			}
		}
		if len(absent) > 0 {
			return Result{
				Kind:        KindMissing,
				Err:         fmt.Errorf("unresolved expression %q: unknown variable %s", expr, strings.Join(absent, ", ")),
				Suggestions: suggest(absent[0], vc.Names()),
			}
		}
	}

	val, err := p.Engine.Eval(ctx, expr, ctyVars)
	if err != nil {
		return fatal(err)
	}
	goVal, err := evalx.FromCty(val)
	if err != nil {
		return fatal(fmt.Errorf("converting result of %q: %w", expr, err))
	}
	return value(goVal)
}

// buildVars flattens the context into cty values, registering each name
// under both its original and lowercased spellings so expression text keeps
// the context's case-insensitivity. Unconvertible values are skipped.
func (p *Pipeline) buildVars(ctx context.Context, vc *vars.Context) map[string]cty.Value {
	logger := ctxlog.FromContext(ctx)
	out := make(map[string]cty.Value)
	vc.Each(func(name string, v any) {
		cv, err := evalx.ToCty(v)
		if err != nil {
			logger.Debug("Skipping variable with no cty representation.", "name", name, "error", err)
			return
		}
		out[name] = cv
		out[strings.ToLower(name)] = cv
	})
	return out
}

// rootName extracts the leading identifier of an expression: the identifier
// itself for simple names, the base collection for method chains, the root
// for property chains.
func rootName(expr string) string {
	expr = strings.TrimSpace(expr)
	i := 0
	for i < len(expr) {
		c := expr[i]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (i > 0 && c >= '0' && c <= '9') {
			i++
			continue
		}
		break
	}
	name := expr[:i]
	if isKeyword(name) {
		return ""
	}
	return name
}

// isKeyword reports names the expression language reserves; they are never
// variable lookups.
func isKeyword(s string) bool {
	switch s {
	case "true", "false", "null":
		return true
	}
	return false
}
