package main

import (
	"os"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/cmd/grant-scraper/cmd"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	os.Exit(cmd.Execute(cmd.BuildInfo{
		Version:   version,
		BuildTime: buildTime,
		GitCommit: gitCommit,
	}))
}
