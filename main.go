package main

import (
	"fmt"
	"os"

	"go.dot.industries/zcfg/cmd"
	"go.dot.industries/zcfg/internal/tui"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, tui.Error("Error:"), err)
		os.Exit(1)
	}
}
