// The 'svk generate' command. This creates (or validates) the local artifact
// without contacting the server, which is handy for pre-populating content
// before a timed run.
package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/storageresearch/svk/pkg/payload"
	"github.com/storageresearch/svk/pkg/report"
	"github.com/storageresearch/svk/pkg/svk"
)

var generateCmdConfig struct {
	name string
	size int64
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the local content artifact",
	Long: `Generate ensures a local artifact of exactly the requested size exists,
reusing an existing one when its size already matches.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if generateCmdConfig.size < 0 {
			return errors.Errorf("invalid object size %d", generateCmdConfig.size)
		}

		out := svk.StepOutcome{
			Op:   svk.OpGenerate,
			Name: generateCmdConfig.name,
			Size: generateCmdConfig.size,
		}

		path := filepath.Join(svkManager.ArtifactDir(), generateCmdConfig.name)
		start := time.Now()
		err := payload.Ensure(path, generateCmdConfig.size)
		out.Elapsed = time.Since(start)
		out.Err = err

		report.NewTextSink(os.Stdout).Record(out)
		if err != nil {
			return errors.Wrap(err, "Generate command failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateCmdConfig.name, "name", "n", "", "object name (also the local artifact name)")
	generateCmd.Flags().Int64VarP(&generateCmdConfig.size, "size", "s", 0, "target object size in bytes")
	generateCmd.MarkFlagRequired("name")
	generateCmd.MarkFlagRequired("size")
}
