// Package report maps the result of a run to the terminal status reported
// to the host orchestrator, and delivers it through a Sink.
package report

import (
	"errors"

	"github.com/shinji-kodama/release-gate/internal/config"
	"github.com/shinji-kodama/release-gate/internal/model"
	"github.com/shinji-kodama/release-gate/internal/reconcile"
)

// Messages reported for the expected, non-exceptional outcomes.
const (
	MsgNotProtectedBranch = "Not protected branch"
	MsgNoLinkedWorkItems  = "PR doesn't have linked work items"
	MsgViolationsPrefix   = "Next work item ids have different value or don't have value: "
)

// Skipped is the outcome when the target branch is not a governed branch.
func Skipped() model.Outcome {
	return model.Outcome{Result: model.ResultSkipped, Message: MsgNotProtectedBranch}
}

// NoLinkedWorkItems is the outcome when the build has no linked work items.
func NoLinkedWorkItems() model.Outcome {
	return model.Outcome{Result: model.ResultFailed, Message: MsgNoLinkedWorkItems}
}

// FromViolations is Succeeded for an empty list, Failed with the
// comma-joined violators otherwise.
func FromViolations(violations []model.Violation) model.Outcome {
	if len(violations) == 0 {
		return model.Outcome{Result: model.ResultSucceeded, Message: ""}
	}
	return model.Outcome{
		Result:  model.ResultFailed,
		Message: MsgViolationsPrefix + reconcile.FormatViolations(violations),
	}
}

// FromError is Failed with the error's message. When err wraps a
// CheckError, the CheckError's own text is reported without the outer
// context, so a configuration mismatch reads exactly
// "Count of branches and releases should be equal".
func FromError(err error) model.Outcome {
	if err == nil {
		return model.Outcome{Result: model.ResultFailed, Message: "unknown error"}
	}
	var ce *model.CheckError
	if errors.As(err, &ce) {
		return model.Outcome{Result: model.ResultFailed, Message: ce.Error()}
	}
	return model.Outcome{Result: model.ResultFailed, Message: err.Error()}
}

// ConfigMismatch is the outcome of a branch/release list length mismatch.
func ConfigMismatch() model.Outcome {
	return FromError(model.NewConfigError(config.MismatchMessage))
}

// ExitCode maps an outcome and the error that produced it (if any) to a
// process exit code. Succeeded and Skipped map to success.
func ExitCode(outcome model.Outcome, err error) model.ExitCode {
	if err != nil {
		return model.ExitCodeForKind(model.KindOf(err))
	}
	switch outcome.Result {
	case model.ResultSucceeded, model.ResultSkipped:
		return model.ExitSuccess
	case model.ResultFailed:
		return model.ExitViolations
	default:
		return model.ExitGeneralError
	}
}
