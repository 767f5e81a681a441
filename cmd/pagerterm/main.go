// Package main is the entry point for pagerterm, a handheld-style terminal
// client.
package main

import (
	"os"

	"github.com/pagerterm/pagerterm/cmd/pagerterm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
