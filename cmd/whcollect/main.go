// whcollect - bulk downloader for wallhaven.cc collections
package main

import (
	"os"

	"github.com/whcollect/whcollect/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
