package main

import (
	"os"

	"github.com/MikeBiancalana/tskctl/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
