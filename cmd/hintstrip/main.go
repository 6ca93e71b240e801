package main

import (
	"os"

	"github.com/gnolang/hintstrip/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
