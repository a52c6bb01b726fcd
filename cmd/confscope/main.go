// Package main provides the entry point for the confscope CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/confscope/cmd/confscope/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
