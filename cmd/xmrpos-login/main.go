// Command xmrpos-login logs a point-of-sale device into an XMRpos instance.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := NewRootCmd(defaultDeps()).Execute(); err != nil {
		// A failed login has already been reported through cliout.
		if !errors.Is(err, errLoginFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
