package main

import (
	"fmt"
	"os"

	"github.com/stashmd/stash/internal/state"
	"github.com/stashmd/stash/pkg/cmd/root"
)

func main() {
	s, err := state.NewState()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize stash:", err)
		os.Exit(1)
	}

	cmd, err := root.NewCmdRoot(s)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize stash:", err)
		os.Exit(1)
	}

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
