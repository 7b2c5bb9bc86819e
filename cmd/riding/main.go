// Command riding places riding hydrogens from a session file and runs
// demonstration refinement cycles against its bond restraints.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "riding:", err)
		os.Exit(1)
	}
}
