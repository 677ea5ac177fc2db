// Package main is the entry point for the calmlint CLI application.
package main

import (
	"fmt"
	"os"

	"github.com/finos/architecture-as-code-sub007/cmd"
	"github.com/finos/architecture-as-code-sub007/internal/logger"
)

// Version information, injected at build time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	rootCmd := cmd.NewRootCmd()
	rootCmd.Version = Version
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
