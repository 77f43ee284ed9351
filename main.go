package main

import (
	"os"

	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
