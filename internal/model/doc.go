// Package model defines the domain types and value objects for the
// release-gate pipeline step.
//
// This package contains pure data structures with no external dependencies.
// All entities (WorkItemRef, WorkItem, Violation, Outcome) are ephemeral:
// they are constructed fresh per run from remote query results and are
// never mutated or persisted afterwards.
//
// The package also defines the error taxonomy (ErrorKind, CheckError) and
// the process exit codes (ExitCode) used by the CLI layer.
package model
