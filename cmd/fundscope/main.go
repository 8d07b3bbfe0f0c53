package main

import (
	"os"

	"github.com/wonny/fundscope/cmd/fundscope/commands"
)

// main is the entry point for the fundscope CLI
// ⭐ single CLI entry point: go run ./cmd/fundscope [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
