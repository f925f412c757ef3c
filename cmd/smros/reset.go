package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	var (
		configPath string
		dataDir    string
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear all gate and assessment state",
		Long:  `Deletes the Hard evidence, the Soft record, the gate lock and the stored result. This is the only way to reopen a locked gate.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := buildService(configPath, dataDir)
			if err != nil {
				return err
			}
			svc.Reset(cmd.Context())
			fmt.Println("State cleared.")
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Local state directory")
	return cmd
}
