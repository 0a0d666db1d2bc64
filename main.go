package main

import (
	"os"

	"github.com/abhisek/olytutor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
