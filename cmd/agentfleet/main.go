// Command agentfleet launches a coding agent in an isolated git worktree,
// opening its panes in the surrounding terminal multiplexer.
package main

import "os"

func main() {
	if err := newRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
