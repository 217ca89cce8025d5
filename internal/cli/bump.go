// Package cli: bump.go implements the "release-gate bump-task-version"
// command, run while packaging the extension.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/release-gate/internal/taskmanifest"
)

// bumpFlags holds the flag values for the bump-task-version command.
type bumpFlags struct {
	extensionFile string
	taskFile      string
}

// NewBumpTaskVersionCommand creates the "bump-task-version" cobra command.
func NewBumpTaskVersionCommand() *cobra.Command {
	flags := &bumpFlags{}

	cmd := &cobra.Command{
		Use:   "bump-task-version",
		Short: "Set the task.json version from the extension manifest",
		Long: `Set the version of the pipeline task manifest to the extension version with
the patch number incremented. The packaging tool does not update task
versions, so this runs before packaging.

Examples:
  release-gate bump-task-version
  release-gate bump-task-version --extension-file azure-devops-extension.json --task-file dist/task.json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runBump(flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&flags.extensionFile, "extension-file", taskmanifest.DefaultExtensionFile, "Extension manifest to read the version from")
	cmd.Flags().StringVar(&flags.taskFile, "task-file", taskmanifest.DefaultTaskFile, "Task manifest to update")

	return cmd
}

// runBump updates the task manifest and prints the version written.
func runBump(flags *bumpFlags, out io.Writer) error {
	version, err := taskmanifest.Bump(flags.extensionFile, flags.taskFile)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		data, err := json.MarshalIndent(map[string]interface{}{
			"taskFile": flags.taskFile,
			"version":  version,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "Updated %s to version %s\n", flags.taskFile, version)
	return nil
}
