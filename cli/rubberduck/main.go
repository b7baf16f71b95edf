package main

import (
	"os"

	rubberduckcmder "github.com/papercomputeco/rubberduck/cmd/rubberduck"
)

func main() {
	cmd := rubberduckcmder.NewRubberduckCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
