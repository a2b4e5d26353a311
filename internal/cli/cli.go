package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/braceval/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config, a
// boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("braceval", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
braceval - evaluate {expression} placeholders in templates.

Usage:
  braceval [options] [TEMPLATE_PATH]

Arguments:
  TEMPLATE_PATH
    Path to a template file, or a directory of `+app.TemplateExt+` files
    (batch mode).

Options:
`)
		flagSet.PrintDefaults()
	}

	exprFlag := flagSet.String("e", "", "Inline template string to evaluate.")
	varsFlag := flagSet.String("vars", "", "Path to a YAML file of variable bindings.")
	dollarFlag := flagSet.Bool("dollar", false, "Use ${expr} placeholder syntax; bare braces stay literal.")
	strictFlag := flagSet.Bool("strict", false, "Fail on missing variables and evaluation errors.")
	cultureFlag := flagSet.String("culture", "", "BCP-47 culture tag for formatting, e.g. 'en-US'.")
	timeoutFlag := flagSet.String("timeout", "", "Per-expression evaluation timeout, e.g. '500ms'.")
	noCacheFlag := flagSet.Bool("no-cache", false, "Disable the compiled-expression cache.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := ""
	if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	if *exprFlag == "" && path == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		Template:     *exprFlag,
		TemplatePath: path,
		VarsPath:     *varsFlag,
		DollarSyntax: *dollarFlag,
		Strict:       *strictFlag,
		Culture:      *cultureFlag,
		Timeout:      *timeoutFlag,
		NoCache:      *noCacheFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return config, false, nil
}
