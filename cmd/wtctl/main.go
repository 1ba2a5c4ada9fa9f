// wtctl is the offline maintenance tool for widetable data directories:
// inspect segment files and run compactions without a running server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
