package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); nil != err {
		fmt.Fprintln(os.Stderr, "Error: ", err)
		os.Exit(exitCode(err))
	}
}
