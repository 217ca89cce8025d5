// Package taskmanifest keeps the pipeline task manifest (task.json) in step
// with the extension manifest (azure-devops-extension.json).
//
// The extension packaging tool does not update the version of the tasks it
// bundles, so the task version is derived from the extension version with
// the patch number incremented. Both files may contain comments, so this
// package uses github.com/tidwall/jsonc to strip them before parsing with
// the standard encoding/json library.
package taskmanifest

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/shinji-kodama/release-gate/internal/model"
)

// Default file names, relative to the extension root.
const (
	DefaultExtensionFile = "azure-devops-extension.json"
	DefaultTaskFile      = "dist/task.json"
)

// Version is the version object of a task manifest.
type Version struct {
	Major int `json:"Major"`
	Minor int `json:"Minor"`
	Patch int `json:"Patch"`
}

// String returns the version as "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// extensionManifest holds the only field read from the extension manifest.
type extensionManifest struct {
	Version string `json:"version"`
}

// ParseVersion parses a "major.minor.patch" version string.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return Version{}, model.NewConfigError(fmt.Sprintf("invalid version %q: expected major.minor.patch", s))
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, model.NewConfigError(fmt.Sprintf("invalid version %q: %q is not a number", s, p))
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// ReadExtensionVersion reads the version of the extension manifest at path.
func ReadExtensionVersion(path string) (Version, error) {
	var manifest extensionManifest
	if err := readJSONC(path, &manifest); err != nil {
		return Version{}, err
	}
	if manifest.Version == "" {
		return Version{}, model.NewConfigError(fmt.Sprintf("no version in %s", path))
	}
	return ParseVersion(manifest.Version)
}

// NextTaskVersion derives the task version from the extension version.
func NextTaskVersion(extension Version) Version {
	return Version{Major: extension.Major, Minor: extension.Minor, Patch: extension.Patch + 1}
}

// Bump sets the version of the task manifest at taskPath to the version
// derived from the extension manifest at extensionPath, keeping every other
// key of the task manifest. It returns the version written.
func Bump(extensionPath, taskPath string) (Version, error) {
	ext, err := ReadExtensionVersion(extensionPath)
	if err != nil {
		return Version{}, err
	}

	// The task manifest is decoded into a generic map so that keys this
	// package does not know about survive the rewrite.
	task := map[string]any{}
	if err := readJSONC(taskPath, &task); err != nil {
		return Version{}, err
	}

	next := NextTaskVersion(ext)
	task["version"] = next

	data, err := json.MarshalIndent(task, "", "  ")
	if err != nil {
		return Version{}, fmt.Errorf("failed to serialize %s: %w", taskPath, err)
	}

	info, err := os.Stat(taskPath)
	if err != nil {
		return Version{}, fmt.Errorf("failed to stat %s: %w", taskPath, err)
	}
	if err := os.WriteFile(taskPath, append(data, '\n'), info.Mode().Perm()); err != nil {
		return Version{}, fmt.Errorf("failed to write %s: %w", taskPath, err)
	}

	return next, nil
}

// readJSONC reads a JSON-with-comments file into v.
func readJSONC(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.CheckError{
				Kind:    model.KindConfig,
				Message: fmt.Sprintf("manifest not found: %s", path),
				Err:     err,
			}
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := json.Unmarshal(jsonc.ToJSON(data), v); err != nil {
		return model.NewConfigError(fmt.Sprintf("failed to parse %s: %v", path, err))
	}
	return nil
}
