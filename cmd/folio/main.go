// Command folio builds and converts word-processing documents.
package main

import (
	"os"

	"github.com/tsawler/folio/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(cli.Execute(version))
}
