// Command megamerge scans interval data sets against a segmentation.
package main

import (
	"os"

	"github.com/hupe1980/megamerge/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
