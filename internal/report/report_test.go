package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/release-gate/internal/model"
)

// TestOutcomes verifies the fixed status/message table.
func TestOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		outcome model.Outcome
		result  model.TaskResult
		message string
	}{
		{
			name:    "no matching branch",
			outcome: Skipped(),
			result:  model.ResultSkipped,
			message: "Not protected branch",
		},
		{
			name:    "zero linked work items",
			outcome: NoLinkedWorkItems(),
			result:  model.ResultFailed,
			message: "PR doesn't have linked work items",
		},
		{
			name:    "violators",
			outcome: FromViolations([]model.Violation{{ID: 11}, {ID: 13, ParentID: "666"}}),
			result:  model.ResultFailed,
			message: "Next work item ids have different value or don't have value: 11,13 (parent 666)",
		},
		{
			name:    "no violators",
			outcome: FromViolations(nil),
			result:  model.ResultSucceeded,
			message: "",
		},
		{
			name:    "length mismatch",
			outcome: ConfigMismatch(),
			result:  model.ResultFailed,
			message: "Count of branches and releases should be equal",
		},
		{
			name:    "unexpected error",
			outcome: FromError(errors.New("dial tcp: connection refused")),
			result:  model.ResultFailed,
			message: "dial tcp: connection refused",
		},
		{
			name:    "wrapped check error reports its own text",
			outcome: FromError(fmt.Errorf("fetching: %w", model.NewLookupError("Didn't find System.TeamProjectId or Build.BuildId"))),
			result:  model.ResultFailed,
			message: "Didn't find System.TeamProjectId or Build.BuildId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.result, tt.outcome.Result)
			assert.Equal(t, tt.message, tt.outcome.Message)
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, model.ExitSuccess, ExitCode(FromViolations(nil), nil))
	assert.Equal(t, model.ExitSuccess, ExitCode(Skipped(), nil))
	assert.Equal(t, model.ExitViolations, ExitCode(NoLinkedWorkItems(), nil))
	assert.Equal(t, model.ExitViolations, ExitCode(FromViolations([]model.Violation{{ID: 1}}), nil))

	cfgErr := model.NewConfigError("bad")
	assert.Equal(t, model.ExitConfigError, ExitCode(FromError(cfgErr), cfgErr))
	plain := errors.New("boom")
	assert.Equal(t, model.ExitGeneralError, ExitCode(FromError(plain), plain))
}

func TestPipelineSink(t *testing.T) {
	tests := []struct {
		name    string
		outcome model.Outcome
		want    string
	}{
		{
			name:    "succeeded",
			outcome: FromViolations(nil),
			want:    "##vso[task.complete result=Succeeded;]\n",
		},
		{
			name:    "skipped",
			outcome: Skipped(),
			want:    "##vso[task.complete result=Skipped;]Not protected branch\n",
		},
		{
			name:    "message is escaped",
			outcome: model.Outcome{Result: model.ResultFailed, Message: "100% broken\r\nsecond line"},
			want:    "##vso[task.complete result=Failed;]100%AZP25 broken%0D%0Asecond line\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewPipelineSink(&buf).Report(tt.outcome))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPipelineSink_InvalidResult(t *testing.T) {
	var buf bytes.Buffer
	err := NewPipelineSink(&buf).Report(model.Outcome{Result: "Cancelled"})
	require.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestConsoleSink(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewConsoleSink(&buf, false).Report(NoLinkedWorkItems()))
		assert.Equal(t, "Failed: PR doesn't have linked work items\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewConsoleSink(&buf, true).Report(Skipped()))

		var got model.Outcome
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, Skipped(), got)
	})
}
