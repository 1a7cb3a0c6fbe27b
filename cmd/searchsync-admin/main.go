// Package main provides the entry point for the searchsync-admin CLI.
package main

import (
	"os"

	"github.com/kailas-cloud/searchsync/cmd/searchsync-admin/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
