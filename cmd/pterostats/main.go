package main

import (
	"os"

	"github.com/MrSnakeDoc/pterostats/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
