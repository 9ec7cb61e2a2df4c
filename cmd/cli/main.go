// Package main is the entry point for the wquote CLI.
package main

import (
	"os"

	"wireless-quote/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
