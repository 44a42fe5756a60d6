package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const serviceName = "checkout-orchestrator"

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "checkout-orchestrator",
		Short:   "Checkout orchestration service",
		Version: Version,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(replayCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
