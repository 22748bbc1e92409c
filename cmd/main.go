package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/polytool/polytool/cmd/root"
	"github.com/polytool/polytool/pkg/resolver"
)

func main() {
	rootCmd := root.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var notSat *resolver.NotSatisfiable
		if errors.As(err, &notSat) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}
