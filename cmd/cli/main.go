// Package main is the entry point for the rental-engine CLI.
package main

import (
	"os"

	"rental-engine/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
