// Package main is the entry point for the budgeter CLI.
package main

import (
	"os"

	"budgeter/cmd/budgeter/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
