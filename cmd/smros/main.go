// Package main provides the smros CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "smros",
		Short: "Shopee Mall readiness scoring for sellers",
		Long: `smros evaluates a shop against the Mall entry criteria: the Hard and
Soft knockout gates, the weighted readiness score, and the prioritized
fix list.`,
		Version: version,
	}

	rootCmd.AddCommand(
		newEvaluateCmd(),
		newGateCmd(),
		newFixlistCmd(),
		newResetCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
