package main

import (
	"fmt"
	"os"
)

func main() {
	err := rootCmd.Execute()
	if serr := teardown(); serr != nil {
		fmt.Fprintf(os.Stderr, "failed to save cursor state: %v\n", serr)
	}
	if err != nil {
		os.Exit(1)
	}
}
