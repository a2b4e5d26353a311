package resolve

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/braceval/internal/evalx"
	"github.com/vk/braceval/internal/vars"
)

// call is one parsed method application in a fast-path chain.
type call struct {
	name string
	args []string
}

// lambda is a parsed `param => body` argument. The body is evaluated by the
// general expression engine with the parameter bound, so fast-path results
// agree exactly with full-evaluator semantics.
type lambda struct {
	param string
	body  string
}

// fastPath handles method-chain query shapes over a named collection:
// Sum, Average, Min, Max, Count, Where, Select, OrderBy(Descending), Take,
// First, Last, Join. It reports applicable=false for anything it does not
// recognize, leaving the expression to the general engine.
func (p *Pipeline) fastPath(ctx context.Context, expr string, vc *vars.Context) (Result, bool) {
	base, calls, ok := splitChain(expr)
	if !ok || len(calls) == 0 {
		return Result{}, false
	}
	for _, c := range calls {
		if !knownMethod(c.name) {
			return Result{}, false
		}
	}

	steps, ok := parsePath(base)
	if !ok {
		return Result{}, false
	}
	root, found := walkPath(steps, vc)
	if !found {
		return Result{
			Kind:        KindMissing,
			Err:         fmt.Errorf("unresolved expression %q", expr),
			Suggestions: suggest(steps[0].text, vc.Names()),
		}, true
	}
	seq, ok := toSlice(root)
	if !ok {
		return Result{}, false
	}

	env := p.buildVars(ctx, vc)
	var cur any = seq
	for _, c := range calls {
		next, err := p.applyCall(ctx, cur, c, env)
		if err != nil {
			return fatal(fmt.Errorf("in %q: %w", expr, err)), true
		}
		cur = next
	}
	return value(cur), true
}

func knownMethod(name string) bool {
	switch strings.ToLower(name) {
	case "sum", "average", "avg", "min", "max", "count", "where", "select",
		"orderby", "orderbydescending", "take", "first", "last", "join":
		return true
	}
	return false
}

func (p *Pipeline) applyCall(ctx context.Context, recv any, c call, env map[string]cty.Value) (any, error) {
	seq, isSeq := toSlice(recv)
	if !isSeq {
		return nil, fmt.Errorf("%s() applied to a non-collection value", c.name)
	}

	name := strings.ToLower(c.name)
	lam, hasLambda, err := parseCallLambda(c)
	if err != nil {
		return nil, err
	}

	mapped := seq
	if hasLambda && name != "where" && name != "orderby" && name != "orderbydescending" &&
		name != "count" && name != "first" && name != "last" {
		mapped, err = p.mapSeq(ctx, seq, lam, env)
		if err != nil {
			return nil, err
		}
	}

	switch name {
	case "sum":
		return sumSeq(mapped)
	case "average", "avg":
		return averageSeq(mapped)
	case "min":
		return extremumSeq(mapped, true)
	case "max":
		return extremumSeq(mapped, false)
	case "count":
		if !hasLambda {
			return int64(len(seq)), nil
		}
		kept, err := p.filterSeq(ctx, seq, lam, env)
		if err != nil {
			return nil, err
		}
		return int64(len(kept)), nil
	case "where":
		if !hasLambda {
			return nil, fmt.Errorf("where() requires a predicate")
		}
		return p.filterSeq(ctx, seq, lam, env)
	case "select":
		if !hasLambda {
			return nil, fmt.Errorf("select() requires a selector")
		}
		return mapped, nil
	case "orderby", "orderbydescending":
		return p.orderSeq(ctx, seq, lam, hasLambda, name == "orderbydescending", env)
	case "take":
		if len(c.args) != 1 {
			return nil, fmt.Errorf("take() requires a count")
		}
		n, err := strconv.Atoi(strings.TrimSpace(c.args[0]))
		if err != nil {
			return nil, fmt.Errorf("take(): %w", err)
		}
		if n < 0 {
			n = 0
		}
		if n > len(seq) {
			n = len(seq)
		}
		return seq[:n], nil
	case "first", "last":
		candidates := seq
		if hasLambda {
			candidates, err = p.filterSeq(ctx, seq, lam, env)
			if err != nil {
				return nil, err
			}
		}
		if len(candidates) == 0 {
			return nil, fmt.Errorf("%s() on an empty sequence", name)
		}
		if name == "first" {
			return candidates[0], nil
		}
		return candidates[len(candidates)-1], nil
	case "join":
		sep := ", "
		if len(c.args) == 1 {
			sep = unquoteArg(c.args[0])
		}
		parts := make([]string, len(mapped))
		for i, v := range mapped {
			parts[i] = invariantString(v)
		}
		return strings.Join(parts, sep), nil
	}
	return nil, fmt.Errorf("unsupported method %q", c.name)
}

func parseCallLambda(c call) (lambda, bool, error) {
	if len(c.args) == 0 || (len(c.args) == 1 && strings.TrimSpace(c.args[0]) == "") {
		return lambda{}, false, nil
	}
	arg := strings.TrimSpace(c.args[0])
	arrow := strings.Index(arg, "=>")
	if arrow < 0 {
		return lambda{}, false, nil
	}
	param := strings.TrimSpace(arg[:arrow])
	body := strings.TrimSpace(arg[arrow+2:])
	if ident, rest := takeIdent(param); ident == "" || rest != "" || body == "" {
		// An => that is not a lambda (inside a string argument, say).
		return lambda{}, false, nil
	}
	return lambda{param: param, body: body}, true, nil
}

// evalLambda evaluates a lambda body for one element via the engine.
func (p *Pipeline) evalLambda(ctx context.Context, lam lambda, elem any, env map[string]cty.Value) (any, error) {
	ev, err := evalx.ToCty(elem)
	if err != nil {
		return nil, fmt.Errorf("element has no expression representation: %w", err)
	}
	scoped := make(map[string]cty.Value, len(env)+2)
	for k, v := range env {
		scoped[k] = v
	}
	scoped[lam.param] = ev
	scoped[strings.ToLower(lam.param)] = ev

	out, err := p.Engine.Eval(ctx, lam.body, scoped)
	if err != nil {
		return nil, err
	}
	return evalx.FromCty(out)
}

func (p *Pipeline) mapSeq(ctx context.Context, seq []any, lam lambda, env map[string]cty.Value) ([]any, error) {
	out := make([]any, len(seq))
	for i, elem := range seq {
		v, err := p.evalLambda(ctx, lam, elem, env)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (p *Pipeline) filterSeq(ctx context.Context, seq []any, lam lambda, env map[string]cty.Value) ([]any, error) {
	var out []any
	for _, elem := range seq {
		v, err := p.evalLambda(ctx, lam, elem, env)
		if err != nil {
			return nil, err
		}
		keep, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("predicate %q did not produce a boolean", lam.body)
		}
		if keep {
			out = append(out, elem)
		}
	}
	if out == nil {
		out = []any{}
	}
	return out, nil
}

func (p *Pipeline) orderSeq(ctx context.Context, seq []any, lam lambda, hasLambda, descending bool, env map[string]cty.Value) ([]any, error) {
	keys := make([]any, len(seq))
	for i, elem := range seq {
		if hasLambda {
			k, err := p.evalLambda(ctx, lam, elem, env)
			if err != nil {
				return nil, err
			}
			keys[i] = k
		} else {
			keys[i] = elem
		}
	}

	idx := make([]int, len(seq))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		less := lessValues(keys[idx[a]], keys[idx[b]])
		if descending {
			return lessValues(keys[idx[b]], keys[idx[a]])
		}
		return less
	})

	out := make([]any, len(seq))
	for i, j := range idx {
		out[i] = seq[j]
	}
	return out, nil
}

func lessValues(a, b any) bool {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return af < bf
	}
	return invariantString(a) < invariantString(b)
}

func sumSeq(seq []any) (any, error) {
	allInts := true
	var fi int64
	var ff float64
	for _, v := range seq {
		f, ok := asFloat(v)
		if !ok {
			return nil, fmt.Errorf("sum over non-numeric element %v", v)
		}
		ff += f
		if i, ok := asInt(v); ok {
			fi += i
		} else {
			allInts = false
		}
	}
	if allInts {
		return fi, nil
	}
	return ff, nil
}

func averageSeq(seq []any) (any, error) {
	if len(seq) == 0 {
		return nil, fmt.Errorf("average of an empty sequence")
	}
	var total float64
	for _, v := range seq {
		f, ok := asFloat(v)
		if !ok {
			return nil, fmt.Errorf("average over non-numeric element %v", v)
		}
		total += f
	}
	return total / float64(len(seq)), nil
}

func extremumSeq(seq []any, min bool) (any, error) {
	if len(seq) == 0 {
		return nil, fmt.Errorf("min/max of an empty sequence")
	}
	best := seq[0]
	for _, v := range seq[1:] {
		if min == lessValues(v, best) && !sameValue(v, best) {
			best = v
		}
	}
	return best, nil
}

func sameValue(a, b any) bool {
	return !lessValues(a, b) && !lessValues(b, a)
}

// splitChain separates a base path from a trailing method-call chain.
func splitChain(expr string) (base string, calls []call, ok bool) {
	expr = strings.TrimSpace(expr)
	root, rest := takeIdent(expr)
	if root == "" || isKeyword(root) {
		return "", nil, false
	}
	base = root

	for rest != "" {
		switch rest[0] {
		case '[':
			if len(calls) > 0 {
				return "", nil, false
			}
			key, after, bok := takeBracket(rest)
			if !bok {
				return "", nil, false
			}
			base += "[" + key + "]"
			rest = after
		case '.':
			name, after := takeIdent(rest[1:])
			if name == "" {
				return "", nil, false
			}
			if strings.HasPrefix(after, "(") {
				args, afterCall, cok := takeCall(after)
				if !cok {
					return "", nil, false
				}
				calls = append(calls, call{name: name, args: args})
				rest = afterCall
				continue
			}
			if len(calls) > 0 {
				return "", nil, false
			}
			base += "." + name
			rest = after
		default:
			return "", nil, false
		}
	}
	return base, calls, true
}

// takeCall consumes a balanced (arg, arg, ...) list, splitting on top-level
// commas outside of quotes and nested brackets.
func takeCall(s string) (args []string, rest string, ok bool) {
	depth := 0
	var quote byte
	start := 1
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 && c == ')' {
				if last := strings.TrimSpace(s[start:i]); last != "" || len(args) > 0 {
					args = append(args, last)
				}
				return args, s[i+1:], true
			}
		case ',':
			if depth == 1 {
				args = append(args, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return nil, "", false
}

func toSlice(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func asFloat(v any) (float64, bool) {
	switch tv := v.(type) {
	case float64:
		return tv, true
	case float32:
		return float64(tv), true
	case int:
		return float64(tv), true
	case int8:
		return float64(tv), true
	case int16:
		return float64(tv), true
	case int32:
		return float64(tv), true
	case int64:
		return float64(tv), true
	case uint:
		return float64(tv), true
	case uint8:
		return float64(tv), true
	case uint16:
		return float64(tv), true
	case uint32:
		return float64(tv), true
	case uint64:
		return float64(tv), true
	}
	return 0, false
}

func asInt(v any) (int64, bool) {
	switch tv := v.(type) {
	case int:
		return int64(tv), true
	case int8:
		return int64(tv), true
	case int16:
		return int64(tv), true
	case int32:
		return int64(tv), true
	case int64:
		return tv, true
	case uint:
		return int64(tv), true
	case uint8:
		return int64(tv), true
	case uint16:
		return int64(tv), true
	case uint32:
		return int64(tv), true
	case uint64:
		return int64(tv), true
	}
	return 0, false
}

func invariantString(v any) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case string:
		return tv
	case bool:
		return strconv.FormatBool(tv)
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(tv), 'f', -1, 32)
	}
	if i, ok := asInt(v); ok {
		return strconv.FormatInt(i, 10)
	}
	return fmt.Sprintf("%v", v)
}

func unquoteArg(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
