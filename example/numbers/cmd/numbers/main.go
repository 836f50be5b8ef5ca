package main

import (
	"os"

	"github.com/AntonStoeckl/fmodel-go/example/numbers/cmd/numbers/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
