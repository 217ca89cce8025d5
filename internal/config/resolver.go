package config

import (
	"strings"

	"github.com/shinji-kodama/release-gate/internal/model"
)

// MismatchMessage is reported when the branch and release lists are absent
// or cannot be paired positionally.
const MismatchMessage = "Count of branches and releases should be equal"

// Inputs holds the raw, unparsed configuration values provided by the host.
// An empty Branches or Releases string means the input was not supplied.
type Inputs struct {
	// Branches is a comma-separated list of governed branch names.
	Branches string

	// Releases is a comma-separated list of release identifiers, paired
	// positionally with Branches.
	Releases string

	// FieldName is the reference name of the work item release field
	// (e.g., "Custom.Release"). May be empty.
	FieldName string

	// TargetBranch is the pull request target reference as reported by the
	// host (e.g., "refs/heads/main").
	TargetBranch string
}

// Resolved is the validated configuration of a run.
type Resolved struct {
	// Mapping is the ordered list of branch/release pairs.
	Mapping []model.BranchRelease

	// FieldName is the work item field that must carry the release value.
	FieldName string

	// TargetBranch is the trimmed pull request target reference.
	TargetBranch string

	// CurrentRelease is the release paired with the target branch.
	// Only meaningful when HasRelease is true.
	CurrentRelease string

	// HasRelease is false when the target branch is not a governed branch,
	// in which case the check does not apply.
	HasRelease bool
}

// Branches returns the configured branch names in order.
func (r *Resolved) Branches() []string {
	out := make([]string, 0, len(r.Mapping))
	for _, m := range r.Mapping {
		out = append(out, m.Branch)
	}
	return out
}

// Releases returns the configured release identifiers in order.
func (r *Resolved) Releases() []string {
	out := make([]string, 0, len(r.Mapping))
	for _, m := range r.Mapping {
		out = append(out, m.Release)
	}
	return out
}

// SplitList splits a comma-separated list and trims whitespace around each
// element. Empty elements are kept so that positional pairing with another
// list is preserved.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Resolve validates the inputs and determines the current release.
//
// Returns a model.CheckError of kind KindConfig when either list is absent
// or the two lists differ in length. A target branch that matches no
// configured branch is not an error: the result has HasRelease == false.
func Resolve(in Inputs) (*Resolved, error) {
	// Step 1: Both lists are mandatory.
	if strings.TrimSpace(in.Branches) == "" || strings.TrimSpace(in.Releases) == "" {
		return nil, model.NewConfigError(MismatchMessage)
	}

	// Step 2: Split and pair positionally.
	branches := SplitList(in.Branches)
	releases := SplitList(in.Releases)
	if len(branches) != len(releases) {
		return nil, model.NewConfigError(MismatchMessage)
	}

	resolved := &Resolved{
		Mapping:      make([]model.BranchRelease, 0, len(branches)),
		FieldName:    in.FieldName,
		TargetBranch: strings.TrimSpace(in.TargetBranch),
	}
	for i := range branches {
		resolved.Mapping = append(resolved.Mapping, model.BranchRelease{
			Branch:  branches[i],
			Release: releases[i],
		})
	}

	// Step 3: The first branch whose full ref equals the target wins.
	if release, ok := CurrentRelease(resolved.Mapping, resolved.TargetBranch); ok {
		resolved.CurrentRelease = release
		resolved.HasRelease = true
	}

	return resolved, nil
}

// CurrentRelease returns the release paired with the branch whose
// refs/heads/ reference equals the trimmed target branch.
func CurrentRelease(mapping []model.BranchRelease, targetBranch string) (string, bool) {
	target := strings.TrimSpace(targetBranch)
	for _, m := range mapping {
		if m.Ref() == target {
			return m.Release, true
		}
	}
	return "", false
}
