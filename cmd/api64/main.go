// api64 is the gateway binary.
//
// Usage:
//
//	API_KEY=secret api64 serve [--listen=:5000] [--upload-dir=uploads] [--config=api64.yaml]
//	api64 version
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
