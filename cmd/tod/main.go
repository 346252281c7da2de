package main

import (
	"os"

	"github.com/partygames/truthordare/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
