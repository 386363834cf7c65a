// Command armory loads adversary emulation data into a SQLite record
// store and prints it back as materialized views.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/armory/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
