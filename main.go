package main

import (
	"os"

	"github.com/jobdigest/job-agent/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
