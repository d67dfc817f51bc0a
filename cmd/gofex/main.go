package main

import (
	"os"

	"github.com/gofex/gofex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
