package braceval

import (
	"errors"
	"time"
)

// ResolverFunc is an optional host-supplied override consulted before any
// other resolution tier. It receives the root identifier of the expression
// and the caller's raw data object; a non-nil return is authoritative for
// that root name.
type ResolverFunc func(name string, data any) any

// ErrorHandlerFunc intercepts a would-be resolution, evaluation, or
// formatting failure and supplies a substitute rendering. Returning false
// declines, restoring the default empty-string/throw behavior.
type ErrorHandlerFunc func(expression string, err error) (string, bool)

// Options configures an Evaluator.
type Options struct {
	// UseCache reuses parsed templates and compiled expressions keyed by
	// their source text. Caching never changes output, only performance.
	UseCache bool
	// CacheSize bounds the cache entry count; 0 selects a default.
	CacheSize int
	// CacheTTL expires cached artifacts; 0 disables expiry.
	CacheTTL time.Duration

	// ThrowOnError makes evaluation and formatting failures fatal instead
	// of rendering as empty substitutions.
	ThrowOnError bool
	// ThrowOnMissingParameter makes unresolved expressions fatal instead of
	// rendering as empty substitutions.
	ThrowOnMissingParameter bool

	// VariableResolver is the optional first resolution tier.
	VariableResolver ResolverFunc
	// ErrorHandler takes precedence over both the empty-string default and
	// the throwing options.
	ErrorHandler ErrorHandlerFunc

	// Culture is a BCP-47 tag ("en-US", "de-DE") used for all numeric and
	// date formatting. Empty selects the process default (English).
	Culture string

	// SupportDollarSignSyntax makes ${expr} live and bare braces literal.
	SupportDollarSignSyntax bool

	// GlobalData is merged beneath the per-call variables; on a name
	// collision the per-call (local) binding always wins.
	GlobalData any

	// EvalTimeout bounds a single expression evaluation in the expression
	// engine tier. On timeout that interpolation alone fails; zero means
	// unbounded.
	EvalTimeout time.Duration
}

func (o Options) validate() error {
	if o.CacheSize < 0 {
		return errors.New("CacheSize must not be negative")
	}
	if o.CacheTTL < 0 {
		return errors.New("CacheTTL must not be negative")
	}
	if o.EvalTimeout < 0 {
		return errors.New("EvalTimeout must not be negative")
	}
	return nil
}
