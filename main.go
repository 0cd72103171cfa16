// Package main is the entry point for the bugrecover CLI.
package main

import (
	"os"

	"github.com/nhle/bugzilla-recovery/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
