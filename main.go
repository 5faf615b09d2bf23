// Package main runs aionr2, an MCP server that exposes the AION-R inference
// and data analysis API to MCP clients over stdio.
package main

import (
	"fmt"
	"os"

	"aionr2/cmd"
)

func main() {
	cmd.SetVersionInfo(Version, Commit, Date)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
