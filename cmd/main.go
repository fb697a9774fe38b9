// Package main provides the ledger API server and its operational commands.
package main

import (
	"os"

	"github.com/go-petr/pet-ledger/cmd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
