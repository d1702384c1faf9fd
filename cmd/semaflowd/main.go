// Command semaflowd is the SemaFlow process entrypoint: serve runs the HTTP
// surface, validate checks a catalog directory, and sql renders a request
// to SQL without executing it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "semaflowd",
		Short: "SemaFlow semantic query compiler daemon",
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newSQLCmd())
	return root
}
