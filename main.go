package main

import (
	"os"

	"github.com/reloadpress/autopost/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
