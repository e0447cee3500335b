package main

import (
	"os"

	"github.com/pablasso/listo/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
