// The 'svk clean' command. This deletes the named object from the server,
// best effort, for picking up after interrupted runs.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/storageresearch/svk/pkg/report"
)

var cleanName string

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete the named object from the server",
	Long: `Clean issues a delete for the named remote object and reports the outcome.
Non-success is reported, not treated as an error (the object may simply not
exist).`,
	Run: func(cmd *cobra.Command, args []string) {
		out := svkManager.Store.Delete(cleanName)
		report.NewTextSink(os.Stdout).Record(out)

		if !out.OK() {
			svkManager.Logger.Warn("Cleanup delete did not succeed for " + cleanName)
		}
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().StringVarP(&cleanName, "name", "n", "", "the object to delete")
	cleanCmd.MarkFlagRequired("name")
}
