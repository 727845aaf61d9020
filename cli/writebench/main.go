package main

import (
	"os"

	writebenchcmder "github.com/papercomputeco/writebench/cmd/writebench"
)

func main() {
	cmd := writebenchcmder.NewWriteBenchCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
