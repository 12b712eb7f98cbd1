// Package main provides the entry point for the loadsearch CLI.
package main

import (
	"os"

	"github.com/loadsearch/loadsearch/cmd/loadsearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
