package braceval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vk/braceval/internal/cache"
	"github.com/vk/braceval/internal/ctxlog"
	"github.com/vk/braceval/internal/evalx"
	"github.com/vk/braceval/internal/format"
	"github.com/vk/braceval/internal/resolve"
	"github.com/vk/braceval/internal/scan"
	"github.com/vk/braceval/internal/vars"
)

// Evaluator renders interpolation templates. It is immutable after New and
// safe for concurrent use; within one template, interpolations are always
// resolved sequentially in left-to-right source order.
type Evaluator struct {
	opts     Options
	culture  format.Culture
	pipeline *resolve.Pipeline
	cache    *cache.Cache
	syntax   scan.Syntax
}

// New validates the options and constructs an Evaluator.
func New(opts Options) (*Evaluator, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	culture, err := format.NewCulture(opts.Culture)
	if err != nil {
		return nil, fmt.Errorf("invalid Culture: %w", err)
	}

	var c *cache.Cache
	if opts.UseCache {
		c = cache.New(opts.CacheSize, opts.CacheTTL)
	}

	syntax := scan.SyntaxBrace
	if opts.SupportDollarSignSyntax {
		syntax = scan.SyntaxDollar
	}

	var resolver resolve.ResolverFunc
	if opts.VariableResolver != nil {
		resolver = resolve.ResolverFunc(opts.VariableResolver)
	}

	return &Evaluator{
		opts:    opts,
		culture: culture,
		pipeline: &resolve.Pipeline{
			Engine:   evalx.NewEngine(c, opts.EvalTimeout),
			Resolver: resolver,
		},
		cache:  c,
		syntax: syntax,
	}, nil
}

// Evaluate renders one template against the per-call data (merged over the
// configured GlobalData).
func Evaluate(ctx context.Context, template string, data any) (string, error) {
	e, err := New(Options{})
	if err != nil {
		return "", err
	}
	return e.Evaluate(ctx, template, data)
}

// Evaluate renders one template against the per-call data.
func (e *Evaluator) Evaluate(ctx context.Context, template string, data any) (string, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Evaluating template.", "length", len(template))

	segs, err := e.scanTemplate(template)
	if err != nil {
		var ue *scan.UnterminatedError
		if errors.As(err, &ue) {
			return "", &ParseError{Offset: ue.Offset, Message: "unterminated expression"}
		}
		return "", &ParseError{Message: err.Error()}
	}

	vc := vars.New(e.opts.GlobalData, data)

	var b strings.Builder
	for _, seg := range segs {
		if seg.Kind == scan.KindLiteral {
			b.WriteString(seg.Text)
			continue
		}
		rendered, err := e.renderExpr(ctx, seg.Text, vc)
		if err != nil {
			return "", err
		}
		b.WriteString(rendered)
	}
	logger.Debug("Template evaluation finished.", "segments", len(segs))
	return b.String(), nil
}

// renderExpr resolves and formats a single interpolation.
func (e *Evaluator) renderExpr(ctx context.Context, raw string, vc *vars.Context) (string, error) {
	sr := scan.Split(raw)
	res := e.pipeline.Resolve(ctx, sr.Expr, vc)

	switch res.Kind {
	case resolve.KindMissing:
		if e.opts.ErrorHandler != nil {
			if sub, ok := e.opts.ErrorHandler(sr.Expr, res.Err); ok {
				return sub, nil
			}
		}
		if e.opts.ThrowOnMissingParameter {
			return "", &ResolveError{Expression: sr.Expr, Suggestions: res.Suggestions}
		}
		return "", nil
	case resolve.KindFatal:
		if e.opts.ErrorHandler != nil {
			if sub, ok := e.opts.ErrorHandler(sr.Expr, res.Err); ok {
				return sub, nil
			}
		}
		if e.opts.ThrowOnError {
			return "", &EvalError{Expression: sr.Expr, Err: res.Err}
		}
		return "", nil
	}

	rendered, ferr := format.Render(res.Value, sr.Format, sr.Alignment, sr.HasAlignment, e.culture)
	if ferr != nil {
		if e.opts.ErrorHandler != nil {
			if sub, ok := e.opts.ErrorHandler(sr.Expr, ferr); ok {
				return sub, nil
			}
		}
		if e.opts.ThrowOnError {
			return "", &FormatError{Expression: sr.Expr, Specifier: sr.Format, Err: ferr}
		}
		// The formatter already substituted the default rendering.
	}
	return rendered, nil
}

// scanTemplate parses a template into segments, consulting the cache.
func (e *Evaluator) scanTemplate(template string) ([]scan.Segment, error) {
	key := "scan\x00" + strconv.Itoa(int(e.syntax)) + "\x00" + template
	if cached, ok := e.cache.Get(key); ok {
		return cached.([]scan.Segment), nil
	}
	segs, err := scan.Scan(template, e.syntax)
	if err != nil {
		return nil, err
	}
	e.cache.Put(key, segs)
	return segs, nil
}

// EvaluateBatch renders many named templates against one shared data
// object. A failing template never aborts its siblings; when the options
// make failures fatal, the returned error joins one BatchError per failing
// key and successful results are still returned.
func (e *Evaluator) EvaluateBatch(ctx context.Context, templates map[string]string, data any) (map[string]string, error) {
	keys := make([]string, 0, len(templates))
	for k := range templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	results := make(map[string]string, len(templates))
	var errs []error
	for _, k := range keys {
		out, err := e.Evaluate(ctx, templates[k], data)
		if err != nil {
			errs = append(errs, &BatchError{Key: k, Err: err})
			continue
		}
		results[k] = out
	}
	return results, errors.Join(errs...)
}

// AsyncResult carries the outcome of EvaluateAsync.
type AsyncResult struct {
	Output string
	Err    error
}

// EvaluateAsync is a non-blocking wrapper around Evaluate. Evaluation order
// and results are identical to the synchronous path.
func (e *Evaluator) EvaluateAsync(ctx context.Context, template string, data any) <-chan AsyncResult {
	ch := make(chan AsyncResult, 1)
	go func() {
		out, err := e.Evaluate(ctx, template, data)
		ch <- AsyncResult{Output: out, Err: err}
		close(ch)
	}()
	return ch
}

// EvaluateTyped renders a template and converts the final string to T.
// Supported targets: string, bool, int, int64, uint64, float64, and
// time.Duration.
func EvaluateTyped[T any](ctx context.Context, e *Evaluator, template string, data any) (T, error) {
	var zero T
	out, err := e.Evaluate(ctx, template, data)
	if err != nil {
		return zero, err
	}
	return convertResult[T](out)
}

func convertResult[T any](s string) (T, error) {
	var out T
	switch p := any(&out).(type) {
	case *string:
		*p = s
	case *bool:
		v, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return out, fmt.Errorf("cannot convert %q to bool: %w", s, err)
		}
		*p = v
	case *int:
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 0)
		if err != nil {
			return out, fmt.Errorf("cannot convert %q to int: %w", s, err)
		}
		*p = int(v)
	case *int64:
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return out, fmt.Errorf("cannot convert %q to int64: %w", s, err)
		}
		*p = v
	case *uint64:
		v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return out, fmt.Errorf("cannot convert %q to uint64: %w", s, err)
		}
		*p = v
	case *float64:
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return out, fmt.Errorf("cannot convert %q to float64: %w", s, err)
		}
		*p = v
	case *time.Duration:
		v, err := time.ParseDuration(strings.TrimSpace(s))
		if err != nil {
			return out, fmt.Errorf("cannot convert %q to duration: %w", s, err)
		}
		*p = v
	default:
		return out, fmt.Errorf("unsupported conversion target %T", out)
	}
	return out, nil
}

// CacheStats exposes the hit/miss counters of the instance cache; zero when
// caching is disabled.
func (e *Evaluator) CacheStats() cache.Stats {
	return e.cache.Stats()
}
