// Package main is the entry point for lookout.
package main

import (
	"lookout/cmd"

	_ "lookout/docs"
)

func main() {
	cmd.Execute()
}
