package main

import (
	"os"

	"github.com/CompassSecurity/binstrings/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
