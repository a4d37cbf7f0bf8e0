// Command fefsctl creates and inspects FEFS volumes stored in plain disk
// image files, the way mkfs/ls/cat tools work against a loopback device.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
