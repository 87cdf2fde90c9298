// Package main implements the silabas command: the HTTP server of the Spanish
// literacy service together with schema migration and catalog seeding
// subcommands.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
