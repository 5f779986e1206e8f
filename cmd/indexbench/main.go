// Package main provides the entry point for the indexbench CLI.
package main

import (
	"fmt"
	"os"

	"github.com/Aman-CERP/indexbench/cmd/indexbench/cmd"
	benchErrors "github.com/Aman-CERP/indexbench/internal/errors"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		_, _ = fmt.Fprint(os.Stderr, benchErrors.FormatForCLI(err))
		os.Exit(1)
	}
}
