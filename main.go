// Command spellart builds and queries adaptive-radix-tree spelling
// indexes. See package cmd for the compile/search/info/graph subcommands.
package main

import (
	"os"

	"github.com/spellart/spellart/cmd"
)

func main() {
	os.Exit(cmd.Run(os.Args[1:]))
}
