// Command uid2-cli is a thin operator tool around the uid2 codec: decode
// an advertising token, or encrypt/decrypt a data payload against a local
// key bundle. It is bootstrap/config/logging glue around the codec, not
// part of the codec itself.
package main

import "os"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}
