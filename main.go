package main

import (
	"os"

	"github.com/motifkit/motif/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
