package main

import (
	"os"

	"github.com/abhisek/worksheets/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
