package main

import (
	"context"
	"os"

	"github.com/nhle/pulseph/internal/cli"
)

var version = "dev"

func main() {
	deps := cli.DefaultDependencies(version)
	exitCode := cli.Execute(context.Background(), os.Args[1:], deps, os.Stdout, os.Stderr)
	os.Exit(exitCode)
}
