package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/smros/smros/pkg/surface"
)

func newEvaluateCmd() *cobra.Command {
	var (
		shopID     string
		inputsPath string
		outputFmt  string
		configPath string
		dataDir    string
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a shop against the Mall readiness criteria",
		Long:  `Reads criterion inputs from a JSON file, runs the weighted scoring pipeline, and renders the readiness report.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd.Context(), evaluateOpts{
				shopID:     shopID,
				inputsPath: inputsPath,
				outputFmt:  outputFmt,
				configPath: configPath,
				dataDir:    dataDir,
			})
		},
	}

	cmd.Flags().StringVar(&shopID, "shop", "", "Shop identifier (required)")
	cmd.Flags().StringVar(&inputsPath, "inputs", "", "Path to criterion inputs JSON (required)")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text, json or markdown")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default: discover .smros/config.yaml)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "Local state directory (default: ~/.local/share/smros)")
	_ = cmd.MarkFlagRequired("shop")
	_ = cmd.MarkFlagRequired("inputs")

	return cmd
}

type evaluateOpts struct {
	shopID     string
	inputsPath string
	outputFmt  string
	configPath string
	dataDir    string
}

func runEvaluate(ctx context.Context, opts evaluateOpts) error {
	svc, err := buildService(opts.configPath, opts.dataDir)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(opts.inputsPath)
	if err != nil {
		return fmt.Errorf("reading inputs: %w", err)
	}
	var inputs map[string]any
	if err := json.Unmarshal(data, &inputs); err != nil {
		return fmt.Errorf("parsing inputs: %w", err)
	}

	result, err := svc.Evaluate(ctx, opts.shopID, inputs)
	if err != nil {
		return fmt.Errorf("evaluating: %w", err)
	}

	renderer := surface.ForFormat(formatName(opts.outputFmt))
	if err := renderer.Render(os.Stdout, result); err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	return nil
}

// formatName maps the CLI --output value onto a renderer format.
func formatName(flag string) string {
	if flag == "text" {
		return "terminal"
	}
	return flag
}
