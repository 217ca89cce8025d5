// Package cli: check.go implements the "release-gate check" command.
//
// The check command is what the pipeline task runs. It reads the task inputs
// and pipeline variables from the environment (INPUT_BRANCHES,
// SYSTEM_TEAMPROJECTID, ...), lets flags override any of them for local
// runs, and reports the outcome either as an Azure Pipelines logging command
// or as plain text/JSON.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/release-gate/internal/azdo"
	"github.com/shinji-kodama/release-gate/internal/check"
	"github.com/shinji-kodama/release-gate/internal/config"
	"github.com/shinji-kodama/release-gate/internal/model"
	"github.com/shinji-kodama/release-gate/internal/report"
)

// Sink names accepted by --sink.
const (
	sinkPipeline = "pipeline"
	sinkConsole  = "console"
)

// checkFlags holds the flag values for the check command.
type checkFlags struct {
	branches     string
	releases     string
	fieldName    string
	targetBranch string
	projectID    string
	buildID      string
	collection   string
	mappingFile  string
	envFiles     []string
	sink         string
	timeout      time.Duration
	failExitCode bool
}

// NewCheckCommand creates the "check" cobra command.
func NewCheckCommand() *cobra.Command {
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check the release field of the work items linked to the build",
		Long: `Check that every work item linked to the current build carries the release
mapped to the pull request target branch.

Inputs and pipeline variables are read from the environment the agent
provides. Flags override them, which makes local runs possible:

Examples:
  release-gate check
  release-gate check --branches main,release/24.4 --releases 24.5,24.4 \
    --field-name Custom.Release --target-branch refs/heads/main \
    --project-id my-project --build-id 1234 --sink console
  release-gate check --mapping-file release-gate.yaml --sink console --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), flags, cmd.OutOrStdout(), nil)
		},
	}

	cmd.Flags().StringVar(&flags.branches, "branches", "", "Comma-separated governed branches (overrides INPUT_BRANCHES)")
	cmd.Flags().StringVar(&flags.releases, "releases", "", "Comma-separated releases, paired by position (overrides INPUT_RELEASES)")
	cmd.Flags().StringVar(&flags.fieldName, "field-name", "", "Work item field holding the release (overrides INPUT_FIELDNAME)")
	cmd.Flags().StringVar(&flags.targetBranch, "target-branch", "", "Pull request target branch (overrides "+config.VarTargetBranch+")")
	cmd.Flags().StringVar(&flags.projectID, "project-id", "", "Team project id (overrides "+config.VarProjectID+")")
	cmd.Flags().StringVar(&flags.buildID, "build-id", "", "Build id (overrides "+config.VarBuildID+")")
	cmd.Flags().StringVar(&flags.collection, "collection-uri", "", "Organization URL (overrides "+config.VarCollectionURI+")")
	cmd.Flags().StringVar(&flags.mappingFile, "mapping-file", "", "YAML file with the branch/release mapping")
	cmd.Flags().StringSliceVar(&flags.envFiles, "env-file", config.DefaultEnvFiles, ".env files loaded before reading the environment")
	cmd.Flags().StringVar(&flags.sink, "sink", sinkPipeline, "Where to report the result: pipeline, console")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 5*time.Minute, "Overall timeout for the remote calls")
	cmd.Flags().BoolVar(&flags.failExitCode, "fail-exit-code", true,
		"Exit non-zero when the result is Failed (disable to rely on the reported task status only)")

	return cmd
}

// runCheck is the main logic function for the check command. dial connects
// to the work-item service; nil means Azure DevOps.
func runCheck(ctx context.Context, flags *checkFlags, out io.Writer, dial check.Dialer) error {
	// Step 1: Pick the sink before doing any work.
	sink, err := newSink(flags.sink, out, IsJSONOutput())
	if err != nil {
		return err
	}

	// Step 2: Layer the flags on top of the environment.
	env := config.NewPipelineEnv(flags.envFiles...)
	env.OverrideInput(config.InputBranches, flags.branches)
	env.OverrideInput(config.InputReleases, flags.releases)
	env.OverrideInput(config.InputFieldName, flags.fieldName)
	env.OverrideVariable(config.VarTargetBranch, flags.targetBranch)
	env.OverrideVariable(config.VarProjectID, flags.projectID)
	env.OverrideVariable(config.VarBuildID, flags.buildID)
	env.OverrideVariable(config.VarCollectionURI, flags.collection)

	logger := newLogger()
	if dial == nil {
		dial = azdoDialer(logger)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if flags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.timeout)
		defer cancel()
	}

	// Step 3: Run the check. Failures are part of the result.
	result := check.NewRunner(env, dial, logger).Run(ctx, check.Options{MappingFile: flags.mappingFile})

	// Step 4: Report the outcome.
	if err := sink.Report(result.Outcome); err != nil {
		return fmt.Errorf("failed to report result: %w", err)
	}
	logger.Debug().Str("result", result.Outcome.Result.String()).Int("violations", len(result.Violations)).Msg("Reported")

	// Step 5: The outcome has been reported; only the exit code is left.
	if !flags.failExitCode {
		return nil
	}
	if code := report.ExitCode(result.Outcome, result.Err); code != model.ExitSuccess {
		return &exitStatus{code: code}
	}
	return nil
}

// newSink creates the sink named by the --sink flag.
func newSink(name string, out io.Writer, asJSON bool) (report.Sink, error) {
	switch name {
	case sinkPipeline, "":
		return report.NewPipelineSink(out), nil
	case sinkConsole:
		return report.NewConsoleSink(out, asJSON), nil
	default:
		return nil, model.NewConfigError(fmt.Sprintf("invalid sink %q: valid values are pipeline, console", name))
	}
}

// azdoDialer connects to Azure DevOps with a personal access token.
func azdoDialer(logger zerolog.Logger) check.Dialer {
	return func(ctx context.Context, endpointURL, token string) (check.WorkItemService, error) {
		client, err := azdo.NewClient(ctx, endpointURL, token, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}
