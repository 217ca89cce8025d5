// Package cli implements the cobra-based CLI commands for release-gate.
//
// Each subcommand (check, bump-task-version) is defined in its own file
// within this package. This file defines the root command that serves as
// the parent for all subcommands and handles global flags.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/release-gate/internal/logging"
	"github.com/shinji-kodama/release-gate/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	jsonOutput bool

	// verbose lowers the log level to debug.
	verbose bool

	// quiet raises the log level to warn.
	quiet bool

	// logLevel sets the log level explicitly and wins over verbose/quiet.
	logLevel string

	// logFormat is the log format: auto, json or console.
	logFormat string
)

// Version, Commit, and Date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "release-gate",
		Short: "Validate the release field of work items linked to a pull request",
		Long: `release-gate runs as an Azure Pipelines build validation step.

It maps the pull request target branch to a release, then checks that every
work item linked to the build (or its parent) carries that release in a
configurable field. The result is reported back to the pipeline as the task
status.`,

		// SilenceUsage prevents cobra from printing usage on every error.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// Execute formats errors itself (text or JSON based on --json flag).
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log warnings and errors")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: trace, debug, info, warn, error (overrides --verbose/--quiet and LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto", "Log format: auto, json, console")

	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewBumpTaskVersionCommand())

	return rootCmd
}

// exitStatus is returned by commands that have already reported their
// result and only need the process to exit with a given code.
type exitStatus struct {
	code model.ExitCode
}

func (e *exitStatus) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
func Execute(rootCmd *cobra.Command) {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	var status *exitStatus
	if !errors.As(err, &status) {
		var checkErr *model.CheckError
		if errors.As(err, &checkErr) {
			printError(checkErr.Message, checkErr.Err)
		} else {
			printError(err.Error(), nil)
		}
	}
	os.Exit(int(exitCodeFor(err)))
}

// exitCodeFor translates a command error into a process exit code.
// CheckError kinds carry their own exit codes; other errors map to 1.
func exitCodeFor(err error) model.ExitCode {
	if err == nil {
		return model.ExitSuccess
	}
	var status *exitStatus
	if errors.As(err, &status) {
		return status.code
	}
	return model.ExitCodeForKind(model.KindOf(err))
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// Errors go to stderr even in JSON mode: stdout is reserved for
		// command output.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
		return
	}

	if underlying != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", message)
	}
}

// newLogger builds the logger for a command from the global flags.
func newLogger() zerolog.Logger {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ResolveLevel(logLevel, verbose, quiet)
	cfg.Format = logFormat
	return logging.New(cfg)
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}
