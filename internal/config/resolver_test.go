package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/release-gate/internal/model"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "single element", input: "main", want: []string{"main"}},
		{name: "trims elements", input: " main , release/24.4 ", want: []string{"main", "release/24.4"}},
		{name: "keeps empty elements", input: "main,,dev", want: []string{"main", "", "dev"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitList(tt.input))
		})
	}
}

// TestResolve covers list validation and current release selection.
func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		in          Inputs
		wantErr     bool
		wantRelease string
		hasRelease  bool
	}{
		{
			name: "matching branch",
			in: Inputs{
				Branches:     "main, release/24.4",
				Releases:     "24.5.0, 24.4.1",
				FieldName:    "Custom.Release",
				TargetBranch: "refs/heads/release/24.4",
			},
			wantRelease: "24.4.1",
			hasRelease:  true,
		},
		{
			name: "target branch is trimmed",
			in: Inputs{
				Branches:     "main",
				Releases:     "24.5.0",
				TargetBranch: "  refs/heads/main \n",
			},
			wantRelease: "24.5.0",
			hasRelease:  true,
		},
		{
			name: "no matching branch",
			in: Inputs{
				Branches:     "main",
				Releases:     "24.5.0",
				TargetBranch: "refs/heads/feature/x",
			},
			hasRelease: false,
		},
		{
			name: "short branch name does not match without refs/heads",
			in: Inputs{
				Branches:     "main",
				Releases:     "24.5.0",
				TargetBranch: "main",
			},
			hasRelease: false,
		},
		{
			name: "first match wins on duplicate branches",
			in: Inputs{
				Branches:     "main,main",
				Releases:     "1.0,2.0",
				TargetBranch: "refs/heads/main",
			},
			wantRelease: "1.0",
			hasRelease:  true,
		},
		{
			name:    "two branches one release",
			in:      Inputs{Branches: "main,dev", Releases: "24.5.0"},
			wantErr: true,
		},
		{
			name:    "branches absent",
			in:      Inputs{Releases: "24.5.0"},
			wantErr: true,
		},
		{
			name:    "releases absent",
			in:      Inputs{Branches: "main"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, MismatchMessage, err.Error())
				assert.ErrorIs(t, err, model.ErrConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hasRelease, got.HasRelease)
			assert.Equal(t, tt.wantRelease, got.CurrentRelease)
		})
	}
}

// TestResolve_EmptyFieldName verifies that a missing field name is a valid,
// degenerate configuration rather than an error.
func TestResolve_EmptyFieldName(t *testing.T) {
	got, err := Resolve(Inputs{Branches: "main", Releases: "1.0", TargetBranch: "refs/heads/main"})
	require.NoError(t, err)
	assert.Equal(t, "", got.FieldName)
	assert.True(t, got.HasRelease)
}

func TestResolved_BranchesAndReleases(t *testing.T) {
	got, err := Resolve(Inputs{Branches: "main, dev", Releases: "2.0, 1.0"})
	require.NoError(t, err)
	assert.Equal(t, []string{"main", "dev"}, got.Branches())
	assert.Equal(t, []string{"2.0", "1.0"}, got.Releases())
	assert.Equal(t, []model.BranchRelease{
		{Branch: "main", Release: "2.0"},
		{Branch: "dev", Release: "1.0"},
	}, got.Mapping)
}
