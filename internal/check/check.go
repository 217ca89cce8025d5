// Package check runs the release-gate pipeline: resolve configuration,
// fetch the work items linked to the build, reconcile their release field
// and turn the result into a terminal outcome.
//
// Every stage returns an explicit error; Run is the single place where
// errors are converted into the Failed outcome reported to the host.
package check

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shinji-kodama/release-gate/internal/config"
	"github.com/shinji-kodama/release-gate/internal/model"
	"github.com/shinji-kodama/release-gate/internal/reconcile"
	"github.com/shinji-kodama/release-gate/internal/report"
)

// WorkItemService is the remote work-item service a run talks to.
// *azdo.Client implements it.
type WorkItemService interface {
	reconcile.WorkItemGetter

	// ListWorkItemRefsForBuild returns the work items linked to a build.
	ListWorkItemRefsForBuild(ctx context.Context, projectID string, buildID int) ([]model.WorkItemRef, error)
}

// Dialer connects to the work-item service.
type Dialer func(ctx context.Context, endpointURL, token string) (WorkItemService, error)

// Options tune a single run.
type Options struct {
	// MappingFile is an optional YAML file with the branch/release mapping.
	MappingFile string
}

// Result is the outcome of a run. Err is set when the outcome is a failure
// caused by an error rather than by the work items themselves.
type Result struct {
	Outcome    model.Outcome
	Violations []model.Violation
	Err        error
}

// failed builds a Result for a failing stage.
func failed(err error) Result {
	return Result{Outcome: report.FromError(err), Err: err}
}

// Runner runs the check against a host environment.
type Runner struct {
	env    config.HostEnv
	dial   Dialer
	logger zerolog.Logger
}

// NewRunner creates a Runner reading from env and connecting through dial.
func NewRunner(env config.HostEnv, dial Dialer, logger zerolog.Logger) *Runner {
	return &Runner{env: env, dial: dial, logger: logger}
}

// Run executes the pipeline. It never returns an error: failures are part
// of the Result.
func (r *Runner) Run(ctx context.Context, opts Options) Result {
	// Step 1: Resolve the branch/release configuration.
	resolved, err := r.resolve(opts)
	if err != nil {
		r.logger.Error().Err(err).Msg("Invalid configuration")
		return failed(err)
	}

	r.logger.Info().Str("targetBranch", resolved.TargetBranch).Msg("Target branch")
	r.logger.Info().Str("release", resolved.CurrentRelease).Bool("protected", resolved.HasRelease).Msg("Current release in branch")
	r.logger.Info().Strs("branches", resolved.Branches()).Msg("List of branches")
	r.logger.Info().Strs("releases", resolved.Releases()).Msg("List of releases")

	// Step 2: Unprotected target branches are not checked at all.
	if !resolved.HasRelease {
		return Result{Outcome: report.Skipped()}
	}

	// Step 3: Connect and list the work items linked to the build.
	endpoint, _ := r.env.Variable(config.VarCollectionURI)
	token, _ := config.AccessToken(r.env)
	svc, err := r.dial(ctx, endpoint, token)
	if err != nil {
		r.logger.Error().Err(err).Msg("Cannot connect to the work item service")
		return failed(err)
	}

	refs, err := FetchLinkedWorkItems(ctx, r.env, svc)
	if err != nil {
		r.logger.Error().Err(err).Msg("Cannot list linked work items")
		return failed(err)
	}
	r.logger.Info().Int("count", len(refs)).Msg("Linked work items")

	if len(refs) == 0 {
		return Result{Outcome: report.NoLinkedWorkItems()}
	}

	// Step 4: Reconcile the release field.
	violations, err := reconcile.New(svc, r.logger).Reconcile(ctx, refs, reconcile.Params{
		FieldName: resolved.FieldName,
		Release:   resolved.CurrentRelease,
	})
	if err != nil {
		r.logger.Error().Err(err).Msg("Reconciliation failed")
		return failed(err)
	}

	// Step 5: Map to the terminal outcome.
	return Result{Outcome: report.FromViolations(violations), Violations: violations}
}

// resolve reads the inputs, overlays the optional mapping file and
// validates the result.
func (r *Runner) resolve(opts Options) (*config.Resolved, error) {
	in, err := config.ReadInputs(r.env)
	if err != nil {
		return nil, err
	}

	if opts.MappingFile != "" {
		mf, err := config.LoadMappingFile(opts.MappingFile)
		if err != nil {
			return nil, err
		}
		mf.Apply(&in)
	}

	return config.Resolve(in)
}

// FetchLinkedWorkItems lists the work items linked to the current build.
//
// Returns a model.CheckError of kind KindLookup when System.TeamProjectId or
// Build.BuildId is missing or the build id is not a number. An empty list
// is not an error.
func FetchLinkedWorkItems(ctx context.Context, env config.HostEnv, svc WorkItemService) ([]model.WorkItemRef, error) {
	projectID, okProject := env.Variable(config.VarProjectID)
	rawBuildID, okBuild := env.Variable(config.VarBuildID)
	if !okProject || !okBuild {
		return nil, model.NewLookupError("Didn't find System.TeamProjectId or Build.BuildId")
	}

	buildID, err := strconv.Atoi(strings.TrimSpace(rawBuildID))
	if err != nil {
		return nil, model.NewLookupError(fmt.Sprintf("Build.BuildId is not a number: %q", rawBuildID))
	}

	refs, err := svc.ListWorkItemRefsForBuild(ctx, projectID, buildID)
	if err != nil {
		return nil, err
	}
	if refs == nil {
		refs = []model.WorkItemRef{}
	}
	return refs, nil
}
