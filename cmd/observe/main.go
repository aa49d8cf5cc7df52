// Package main is the entry point for the observe command.
package main

import (
	"fmt"
	"os"

	"github.com/dshills/observable/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
