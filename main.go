package main

import (
	"os"

	"github.com/brendan-ward/rastertransform/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
