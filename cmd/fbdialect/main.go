// Package main provides the fbdialect CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/fbdialect/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
