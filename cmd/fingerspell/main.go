package main

import (
	"os"

	"github.com/ayusman/fingerspell/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
