package main

import (
	"os"

	"github.com/featforge/featforge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
