package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/smros/smros/pkg/gate"
)

func newGateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Inspect and advance the knockout gates",
	}
	cmd.AddCommand(
		newGateStatusCmd(),
		newGateHardCmd(),
		newGateSoftCmd(),
	)
	return cmd
}

func newGateStatusCmd() *cobra.Command {
	var (
		configPath string
		dataDir    string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the derived gate status",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := buildService(configPath, dataDir)
			if err != nil {
				return err
			}
			snap := svc.GateSnapshot(cmd.Context())
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Local state directory")
	return cmd
}

func newGateHardCmd() *cobra.Command {
	var (
		inputPath  string
		configPath string
		dataDir    string
	)

	cmd := &cobra.Command{
		Use:   "hard",
		Short: "Submit the all-or-nothing Hard-KO evidence",
		Long:  `Reads shop info, metrics and document metadata from a JSON file and runs the thirteen Hard-KO checks. Evidence is persisted only when every check passes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGateHard(cmd.Context(), inputPath, configPath, dataDir)
		},
	}
	cmd.Flags().StringVar(&inputPath, "input", "", "Path to hard-gate submission JSON (required)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Local state directory")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runGateHard(ctx context.Context, inputPath, configPath, dataDir string) error {
	svc, err := buildService(configPath, dataDir)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading submission: %w", err)
	}
	var in gate.HardInput
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("parsing submission: %w", err)
	}

	checks, passed, err := svc.SubmitHard(ctx, in)
	if err != nil {
		return fmt.Errorf("submitting: %w", err)
	}

	for _, c := range checks {
		mark := "PASS"
		if !c.Passed {
			mark = "FAIL"
		}
		line := fmt.Sprintf("  [%s] %s", mark, c.ID)
		if c.Reason != "" {
			line += " — " + c.Reason
		}
		fmt.Println(line)
	}
	if !passed {
		return fmt.Errorf("hard gate not passed")
	}
	fmt.Println("Hard gate passed; remediation window opened.")
	return nil
}

func newGateSoftCmd() *cobra.Command {
	var (
		ruleID     string
		value      float64
		note       string
		configPath string
		dataDir    string
	)

	cmd := &cobra.Command{
		Use:   "soft",
		Short: "Record one Soft-KO criterion value",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := buildService(configPath, dataDir)
			if err != nil {
				return err
			}

			var raw *float64
			if cmd.Flags().Changed("value") {
				raw = &value
			}
			status, err := svc.ApplySoftInput(cmd.Context(), ruleID, raw, note)
			if err != nil {
				return err
			}
			fmt.Printf("Gate status: %s\n", status)
			return nil
		},
	}
	cmd.Flags().StringVar(&ruleID, "rule", "", "Soft criterion ID, e.g. PEN-01 (required)")
	cmd.Flags().Float64Var(&value, "value", 0, "Observed value; omit to only re-derive the status")
	cmd.Flags().StringVar(&note, "note", "", "Optional remediation note")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Local state directory")
	_ = cmd.MarkFlagRequired("rule")
	return cmd
}
