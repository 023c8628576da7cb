package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
)

// Version will be set at build time via -ldflags
var (
	Version = "v0.1.0-dev"
	Commit  = "unknown"
)

func versionString() string {
	if Commit == "unknown" {
		return Version
	}
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

func main() {
	root := newRootCmd(newApp())
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
