// Command todo is the terminal client for the todo server. Without a
// subcommand it opens the interactive list.
package main

import (
	"fmt"
	"os"

	"github.com/BuzzLyutic/todomvc/internal/config"
)

func main() {
	root := newRootCmd(config.New())
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
