// Package main is the shashin CLI entry point.
package main

import (
	"os"

	"github.com/hyperjump/shashin/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
