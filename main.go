package main

import (
	"os"

	"github.com/spigell/scheme-navigator/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
