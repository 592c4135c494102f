// Package main is the entry point for the objectify CLI.
package main

import (
	"os"

	"github.com/f3rmion/objectify/cmd/objectify/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
