// The svk command line tool. We structure svk as a single executable with
// subcommands, as is common for many cloud utilities; all of the actual
// argument handling lives in the cmd package.
package main

import (
	"github.com/storageresearch/svk/cmd"
)

func main() {
	cmd.Execute()
}
