// Package app wires the CLI configuration into a braceval Evaluator: it
// configures logging, loads template and variable files, runs the
// evaluation, and writes results.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vk/braceval"
	"github.com/vk/braceval/internal/ctxlog"
	"github.com/vk/braceval/internal/fsutil"
)

// TemplateExt is the extension the directory batch mode picks up.
const TemplateExt = ".tmpl"

// App encapsulates the tool's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	errW   io.Writer
	logger *slog.Logger
	config *Config
}

// NewApp constructs the application with its own isolated logger.
func NewApp(outW, errW io.Writer, cfg *Config) *App {
	return &App{
		outW:   outW,
		errW:   errW,
		logger: newLogger(cfg.LogLevel, cfg.LogFormat, errW),
		config: cfg,
	}
}

// Run performs one evaluation pass and writes the rendered output.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("Application starting.")

	data, err := a.loadVars()
	if err != nil {
		return err
	}

	opts := braceval.Options{
		UseCache:                !a.config.NoCache,
		ThrowOnError:            a.config.Strict,
		ThrowOnMissingParameter: a.config.Strict,
		Culture:                 a.config.Culture,
		SupportDollarSignSyntax: a.config.DollarSyntax,
	}
	if a.config.Timeout != "" {
		timeout, err := time.ParseDuration(a.config.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
		opts.EvalTimeout = timeout
	}

	evaluator, err := braceval.New(opts)
	if err != nil {
		return err
	}

	if a.config.Template != "" {
		out, err := evaluator.Evaluate(ctx, a.config.Template, data)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.outW, out)
		return nil
	}

	info, err := os.Stat(a.config.TemplatePath)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		raw, err := os.ReadFile(a.config.TemplatePath)
		if err != nil {
			return err
		}
		out, err := evaluator.Evaluate(ctx, string(raw), data)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.outW, out)
		return nil
	}

	return a.runBatch(ctx, evaluator, data)
}

// runBatch evaluates every template file under the configured directory
// against one shared variable context.
func (a *App) runBatch(ctx context.Context, evaluator *braceval.Evaluator, data any) error {
	paths, err := fsutil.FindFilesByExtension(a.config.TemplatePath, TemplateExt)
	if err != nil {
		return err
	}
	a.logger.Debug("Batch mode discovered templates.", "count", len(paths))

	templates := make(map[string]string, len(paths))
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(a.config.TemplatePath, p)
		if relErr != nil {
			rel = p
		}
		templates[rel] = string(raw)
	}

	results, batchErr := evaluator.EvaluateBatch(ctx, templates, data)
	for _, p := range paths {
		rel, relErr := filepath.Rel(a.config.TemplatePath, p)
		if relErr != nil {
			rel = p
		}
		if out, ok := results[rel]; ok {
			fmt.Fprintf(a.outW, "--- %s\n%s\n", rel, out)
		}
	}
	return batchErr
}

// loadVars reads the optional YAML variable file into a name->value map.
func (a *App) loadVars() (map[string]any, error) {
	if a.config.VarsPath == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(a.config.VarsPath)
	if err != nil {
		return nil, fmt.Errorf("reading variables file: %w", err)
	}
	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing variables file: %w", err)
	}
	return data, nil
}
