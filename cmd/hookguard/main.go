package main

import "os"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// exitFunc terminates the process; tests replace it to observe exit codes.
var exitFunc = os.Exit

func main() {
	Execute()
}
