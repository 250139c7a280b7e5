package main

import (
	"fmt"
	"os"

	"github.com/chronicle-cli/chronicle/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the chronicle command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
