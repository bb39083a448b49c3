package main

import (
	"fmt"
	"os"

	"pscoord/internal/coorderr"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			if v, ok := r.(coorderr.InvariantViolation); ok {
				fmt.Fprintf(os.Stderr, "pscoordctl: fatal: %s\n", v.Error())
				os.Exit(2)
			}
			panic(r)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pscoordctl: %v\n", err)
		os.Exit(1)
	}
}
