// Command todo is the command-line front end. It only talks to the
// coordinator; the store and repositories stay behind it.
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
