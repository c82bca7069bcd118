// fallpicker is a standalone terminal front-end for the picker engine,
// exercising the default bubbletea Host outside of any editor.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fallpicker:", err)
		os.Exit(1)
	}
}
