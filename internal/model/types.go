// Package model defines the domain types for the release-gate pipeline step.
//
// All entities in this package are transient representations built from
// Azure DevOps query results at runtime. There is no persistent state.
package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ParentField is the well-known work item field that holds the identifier
// of the parent work item. Its value may arrive as a number or a string.
const ParentField = "System.Parent"

// BranchRefPrefix is prepended to a configured branch name before it is
// compared against the pull request target branch reported by the host.
const BranchRefPrefix = "refs/heads/"

// TaskResult represents the terminal status of a run as understood by the
// host orchestrator.
type TaskResult string

const (
	// ResultSucceeded indicates that every linked work item carries the
	// expected release value.
	ResultSucceeded TaskResult = "Succeeded"

	// ResultFailed indicates a violation, a configuration problem or an
	// unexpected error.
	ResultFailed TaskResult = "Failed"

	// ResultSkipped indicates that the check does not apply, because the
	// pull request target is not one of the governed branches.
	ResultSkipped TaskResult = "Skipped"
)

// String returns the string representation of TaskResult.
func (r TaskResult) String() string {
	return string(r)
}

// IsValid checks whether the TaskResult value is one of the predefined states.
func (r TaskResult) IsValid() bool {
	switch r {
	case ResultSucceeded, ResultFailed, ResultSkipped:
		return true
	default:
		return false
	}
}

// ParseTaskResult converts a string to a TaskResult. Matching is
// case-insensitive. Returns an error if the string is not a known result.
func ParseTaskResult(s string) (TaskResult, error) {
	for _, r := range []TaskResult{ResultSucceeded, ResultFailed, ResultSkipped} {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid task result: %q (valid: Succeeded, Failed, Skipped)", s)
}

// BranchRelease pairs a governed branch name with the release identifier
// that work items merged into it must carry.
type BranchRelease struct {
	// Branch is the short branch name (without the refs/heads/ prefix).
	Branch string `json:"branch" yaml:"branch"`

	// Release is the expected value of the release field.
	Release string `json:"release" yaml:"release"`
}

// Ref returns the fully qualified Git reference for the branch.
func (b BranchRelease) Ref() string {
	return BranchRefPrefix + b.Branch
}

// WorkItemRef is the minimal, id-only reference to a work item linked to a
// build. It only serves to enumerate reconciliation candidates.
type WorkItemRef struct {
	ID int `json:"id"`
}

// WorkItem is a work item record: an identifier and a possibly partial map
// of field name to raw field value as decoded from the remote service.
type WorkItem struct {
	// ID is the work item identifier.
	ID int `json:"id"`

	// Fields holds the raw field values. May be nil when the remote service
	// returned no field data for the item.
	Fields map[string]any `json:"fields,omitempty"`
}

// HasField reports whether the field map contains the given key, regardless
// of its value.
func (w WorkItem) HasField(name string) bool {
	if w.Fields == nil {
		return false
	}
	_, ok := w.Fields[name]
	return ok
}

// Field returns the value of the named field as a tagged optional.
// A missing key or a nil value yields an absent FieldValue.
func (w WorkItem) Field(name string) FieldValue {
	if w.Fields == nil {
		return FieldValue{}
	}
	raw, ok := w.Fields[name]
	if !ok {
		return FieldValue{}
	}
	s, ok := StringValue(raw)
	if !ok {
		return FieldValue{}
	}
	return FieldValue{Value: s, Present: true}
}

// ParentID returns the normalized identifier held by the parent-link field.
// The second return value is false when the item has no usable parent link.
func (w WorkItem) ParentID() (string, bool) {
	parent := w.Field(ParentField)
	if !parent.Present {
		return "", false
	}
	id := strings.TrimSpace(parent.Value)
	if id == "" {
		return "", false
	}
	return id, true
}

// IDString returns the identifier in the normalized string form used for
// id comparisons.
func (w WorkItem) IDString() string {
	return strconv.Itoa(w.ID)
}

// FieldValue is a present-with-value or absent field lookup result.
type FieldValue struct {
	Value   string
	Present bool
}

// Trimmed returns the value with leading and trailing whitespace removed.
// The result is meaningless when the value is absent.
func (v FieldValue) Trimmed() string {
	return strings.TrimSpace(v.Value)
}

// StringValue converts a raw decoded field value into its normalized string
// form. Numbers are rendered without exponent or trailing zeros so that a
// parent id decoded as float64 666 compares equal to the string "666".
// Returns false for nil.
func StringValue(raw any) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case int:
		return strconv.Itoa(v), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint32:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}

// Violation is a work item that does not carry the expected release value.
//
// ParentID is set only when the verdict was reached through the parent
// fallback, in which case the item is reported with a parent annotation.
type Violation struct {
	ID       int    `json:"id"`
	ParentID string `json:"parentId,omitempty"`
}

// String renders the violation for reporting.
// Format: "13" or "13 (parent 666)".
func (v Violation) String() string {
	if v.ParentID == "" {
		return strconv.Itoa(v.ID)
	}
	return fmt.Sprintf("%d (parent %s)", v.ID, v.ParentID)
}

// Outcome is the terminal status of a run plus the message shown to the user.
type Outcome struct {
	Result  TaskResult `json:"result"`
	Message string     `json:"message"`
}

// String returns a human-readable representation of the outcome.
func (o Outcome) String() string {
	if o.Message == "" {
		return o.Result.String()
	}
	return fmt.Sprintf("%s: %s", o.Result, o.Message)
}
