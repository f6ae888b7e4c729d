package main

import (
	"fmt"
	"os"

	"github.com/grabtube/grabtube/cmd"
)

// Populated at build time via -ldflags.
var (
	version   = "dev"
	buildType = "local"
	date      = "unknown"
	commit    = "unknown"
)

func main() {
	err := cmd.Execute(os.Args, cmd.BuildArgs{
		Version:   version,
		BuildType: buildType,
		Date:      date,
		Commit:    commit,
	})
	if err != nil {
		fmt.Printf("grabtube: %s\n", err.Error())
		os.Exit(1)
	}
}
