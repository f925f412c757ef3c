package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFixlistCmd() *cobra.Command {
	var (
		configPath string
		dataDir    string
	)

	cmd := &cobra.Command{
		Use:   "fixlist",
		Short: "Show the highest-impact fixes from the latest assessment",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := buildService(configPath, dataDir)
			if err != nil {
				return err
			}
			res := svc.LatestResult(cmd.Context())
			if res == nil {
				return fmt.Errorf("no completed assessment; run 'smros evaluate' first")
			}
			if len(res.Fixlist) == 0 {
				fmt.Println("Nothing to fix.")
				return nil
			}
			for i, fx := range res.Fixlist {
				fmt.Printf("%d. %s (%s) — impact %.2f, current score %.0f\n",
					i+1, fx.RuleID, fx.Group, fx.Impact, fx.Score)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Local state directory")
	return cmd
}
