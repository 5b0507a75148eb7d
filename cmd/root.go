// Root of command-line argument parsing.
// This file was based off the standard cobra template, see
// https://github.com/spf13/cobra
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/storageresearch/svk/pkg/svkmgr"
)

var cfgFile string
var serverURL string

var svkManager *svkmgr.SvkManager

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "svk",
	Short: "The Storage Verification Kit",
	Long:  `A client for verifying the correctness and latency of remote file-storage services.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		mgrArgs := map[string]interface{}{}
		if cfgFile != "" {
			mgrArgs["config-file"] = cfgFile
		}
		if serverURL != "" {
			mgrArgs["server-url"] = serverURL
		}

		var err error
		svkManager, err = svkmgr.NewManager(mgrArgs)
		if err != nil {
			fmt.Printf("Failed to initialize svk manager: %v\n", err)
			os.Exit(1)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		svkManager.Destroy()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by svk.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if svkManager == nil || svkManager.Logger == nil {
			fmt.Printf("%v\n", err)
		} else {
			svkManager.Logger.Error(err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is configs/svk.yaml)")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server-url", "u", "", "base URL of the file-storage server")
}
