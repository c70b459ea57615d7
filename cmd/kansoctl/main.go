// Command kansoctl fetches Kanso habit statistics and badge unlocks from the
// terminal.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
