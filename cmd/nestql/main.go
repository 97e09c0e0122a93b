// Package main is the entry point for the nestql CLI.
package main

import (
	"os"

	"github.com/satishbabariya/nestql/cmd/nestql/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
