// Package main provides the entry point for the fleetbridge CLI tool.
package main

import (
	"github.com/relayops/fleetbridge/cmd/fleetbridge/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
