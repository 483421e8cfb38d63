package main

import (
	"os"

	"github.com/rustyeddy/misterpips/cmd/misterpips/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
