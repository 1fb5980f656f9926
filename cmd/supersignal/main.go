package main

import (
	"os"

	"github.com/wonny/supersignal/cmd/supersignal/commands"
)

// main is the entry point for the supersignal CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/supersignal [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
