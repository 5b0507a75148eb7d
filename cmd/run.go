// Handle the "svk run" command: one full object lifecycle against the
// configured storage provider.
package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/storageresearch/svk/pkg/lifecycle"
	"github.com/storageresearch/svk/pkg/report"
	"github.com/storageresearch/svk/pkg/svk"
)

// Filled in by cobra argument parsing in init()
var runCmdConfig struct {
	name string
	size int64
	mode string
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one object lifecycle and report each step",
	Long: `Run probes the server for the named object, generating and uploading it if
absent, fetches it back with the selected retrieval mode, and deletes it.
Every step prints its status and wall-clock latency.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if runCmdConfig.size < 0 {
			return errors.Errorf("invalid object size %d", runCmdConfig.size)
		}

		mode, err := runMode()
		if err != nil {
			return err
		}

		runner := lifecycle.NewRunner(svkManager.Logger, svkManager.Store, report.NewTextSink(os.Stdout))
		if err := runner.Run(lifecycle.Args{
			Name:        runCmdConfig.name,
			Size:        runCmdConfig.size,
			Mode:        mode,
			ArtifactDir: svkManager.ArtifactDir(),
		}); err != nil {
			return errors.Wrap(err, "Run command failed")
		}
		return nil
	},
}

// runMode resolves the retrieval mode from the command line, falling back to
// the configured default.
func runMode() (svk.RetrievalMode, error) {
	if runCmdConfig.mode != "" {
		return svk.ParseRetrievalMode(runCmdConfig.mode)
	}
	return svkManager.RetrievalMode()
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runCmdConfig.name, "name", "n", "", "object name (also the local artifact name)")
	runCmd.Flags().Int64VarP(&runCmdConfig.size, "size", "s", 0, "target object size in bytes")
	runCmd.Flags().StringVarP(&runCmdConfig.mode, "mode", "m", "", "retrieval mode: download | download-chunked")
	runCmd.MarkFlagRequired("name")
	runCmd.MarkFlagRequired("size")
}
