package main

import (
	"os"

	"github.com/charliek/devcli/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
