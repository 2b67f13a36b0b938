package main

import (
	"os"

	"github.com/harun/literelay/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
