package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/release-gate/internal/model"
)

// MappingFile is the YAML form of the branch/release configuration, for
// repositories that prefer to keep the mapping under version control
// instead of in task inputs.
//
// Either the positional lists or the mapping list may be used:
//
//	fieldName: Custom.Release
//	branches: [main, release/24.4]
//	releases: [24.5.0, 24.4.1]
//
//	fieldName: Custom.Release
//	mapping:
//	  - branch: main
//	    release: 24.5.0
type MappingFile struct {
	FieldName string                `yaml:"fieldName"`
	Branches  []string              `yaml:"branches"`
	Releases  []string              `yaml:"releases"`
	Mapping   []model.BranchRelease `yaml:"mapping"`
}

// LoadMappingFile reads and parses a YAML mapping file.
func LoadMappingFile(path string) (*MappingFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &model.CheckError{
				Kind:    model.KindConfig,
				Message: fmt.Sprintf("mapping file not found: %s", path),
				Err:     err,
			}
		}
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}

	var mf MappingFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, &model.CheckError{
			Kind:    model.KindConfig,
			Message: fmt.Sprintf("failed to parse mapping file %s", path),
			Err:     err,
		}
	}

	if len(mf.Mapping) > 0 && (len(mf.Branches) > 0 || len(mf.Releases) > 0) {
		return nil, model.NewConfigError(
			fmt.Sprintf("mapping file %s: use either mapping or branches/releases, not both", path))
	}

	return &mf, nil
}

// Apply overlays the file onto the inputs. Lists from the file replace the
// input lists; the field name from the file is used only when the inputs
// carry none. The positional length check stays with Resolve.
func (mf *MappingFile) Apply(in *Inputs) {
	branches, releases := mf.Branches, mf.Releases
	if len(mf.Mapping) > 0 {
		branches = make([]string, 0, len(mf.Mapping))
		releases = make([]string, 0, len(mf.Mapping))
		for _, m := range mf.Mapping {
			branches = append(branches, m.Branch)
			releases = append(releases, m.Release)
		}
	}

	if len(branches) > 0 {
		in.Branches = strings.Join(branches, ",")
	}
	if len(releases) > 0 {
		in.Releases = strings.Join(releases, ",")
	}
	if in.FieldName == "" {
		in.FieldName = mf.FieldName
	}
}
