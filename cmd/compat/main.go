package main

import (
	"os"

	"github.com/oriumgames/compat/cmd/compat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
