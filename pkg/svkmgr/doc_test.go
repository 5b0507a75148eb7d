package svkmgr

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/storageresearch/svk/pkg/lifecycle"
	"github.com/storageresearch/svk/pkg/report"
)

func Example() {
	mgrArgs := map[string]interface{}{}
	// ./svk.yaml is an svk configuration that's been setup for your environment
	mgrArgs["config-file"] = "./svk.yaml"

	// Adding a custom logger is optional
	svkLogger := logrus.New()
	svkLogger.SetLevel(logrus.WarnLevel)
	mgrArgs["logger"] = svkLogger

	mgr, err := NewManager(mgrArgs)
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer mgr.Destroy()

	mode, err := mgr.RetrievalMode()
	if err != nil {
		fmt.Printf("Bad retrieval mode: %v\n", err)
		os.Exit(1)
	}

	// Run the full object lifecycle against the configured provider,
	// reporting each step to stdout.
	runner := lifecycle.NewRunner(mgr.Logger, mgr.Store, report.NewTextSink(os.Stdout))
	err = runner.Run(lifecycle.Args{
		Name:        "example.txt",
		Size:        2048,
		Mode:        mode,
		ArtifactDir: mgr.ArtifactDir(),
	})
	if err != nil {
		fmt.Printf("Run aborted: %v\n", err)
		os.Exit(1)
	}
}
