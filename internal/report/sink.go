package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shinji-kodama/release-gate/internal/model"
)

// Sink accepts the terminal status of a run. It is the only externally
// observable output of a run besides diagnostic logs.
type Sink interface {
	Report(outcome model.Outcome) error
}

// PipelineSink reports to Azure Pipelines by writing a task.complete
// logging command to the agent-monitored output:
//
//	##vso[task.complete result=Failed;]PR doesn't have linked work items
type PipelineSink struct {
	w io.Writer
}

// NewPipelineSink creates a PipelineSink writing to w (normally stdout).
func NewPipelineSink(w io.Writer) *PipelineSink {
	return &PipelineSink{w: w}
}

// Report implements Sink.
func (s *PipelineSink) Report(outcome model.Outcome) error {
	if !outcome.Result.IsValid() {
		return fmt.Errorf("invalid task result %q", outcome.Result)
	}
	_, err := fmt.Fprintf(s.w, "##vso[task.complete result=%s;]%s\n",
		outcome.Result, EscapeMessage(outcome.Message))
	return err
}

// messageEscaper escapes the characters the agent treats specially in the
// message part of a logging command. "%" must be escaped first, which
// strings.NewReplacer guarantees by matching at each position once.
var messageEscaper = strings.NewReplacer(
	"%", "%AZP25",
	"\r", "%0D",
	"\n", "%0A",
)

// EscapeMessage escapes a logging command message.
func EscapeMessage(msg string) string {
	return messageEscaper.Replace(msg)
}

// ConsoleSink reports for humans or scripts running release-gate outside
// of a pipeline.
type ConsoleSink struct {
	w    io.Writer
	json bool
}

// NewConsoleSink creates a ConsoleSink. When asJSON is true the outcome is
// written as a JSON object, otherwise as a single line of text.
func NewConsoleSink(w io.Writer, asJSON bool) *ConsoleSink {
	return &ConsoleSink{w: w, json: asJSON}
}

// Report implements Sink.
func (s *ConsoleSink) Report(outcome model.Outcome) error {
	if s.json {
		data, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(s.w, string(data))
		return err
	}
	_, err := fmt.Fprintln(s.w, outcome.String())
	return err
}
