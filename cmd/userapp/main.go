package main

import (
	"os"

	"github.com/bjaus/mediator/cmd/userapp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
