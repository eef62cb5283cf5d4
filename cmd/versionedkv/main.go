// Command versionedkv is a small CLI around the versionedkv store, useful
// for manual inspection of a data directory: put/get/delete/getasof against
// a disk-backed instance, plus a stats subcommand.
package main

import (
	"fmt"
	"os"

	"github.com/embeddedkv/versionedstore/cmd/versionedkv/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
