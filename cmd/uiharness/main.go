// Package main provides the uiharness command: it resolves browser and
// environment settings from property files, runs YAML smoke plans in a real
// browser and reports results with failure screenshots and traces.
package main

import (
	"os"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	os.Exit(newApp(os.Stdout, os.Stderr).execute(os.Args[1:]))
}
