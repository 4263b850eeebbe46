package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/loopctl/internal/config"
	"github.com/jackzampolin/loopctl/internal/output"
	"github.com/jackzampolin/loopctl/internal/review"
	"github.com/jackzampolin/loopctl/internal/setup"
)

var loopCmd = &cobra.Command{
	Use:   "loop",
	Short: "Start and inspect human loops",
	Long: `Start and inspect human loops (individual review tasks).

These are for manual testing: the deployed pipeline starts its own loops.

Examples:
  loopctl loop start --flow-arn arn:aws:sagemaker:...:flow-definition/document-review
  loopctl loop start --flow-arn ... --payload page.json --only-below
  loopctl loop describe loop-6b1f...
  loopctl loop output loop-6b1f...`,
}

var (
	loopFlowARN    string
	loopPayload    string
	loopName       string
	loopOnlyBelow  bool
	loopNoValidate bool
)

// payloadFromFlag loads the payload from path, falling back to config.
func payloadFromFlag(cfg *config.Config, path string) (*review.Payload, error) {
	if path != "" {
		return review.LoadPayload(path)
	}
	return setup.LoadPayload(cfg)
}

var loopStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Send a payload to reviewers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := services(cmd)
		cfg := s.Config.Get()

		payload, err := payloadFromFlag(cfg, loopPayload)
		if err != nil {
			return err
		}
		check := payload.Validate
		if loopNoValidate {
			check = payload.CheckResolved
		}
		if err := check(); err != nil {
			return err
		}
		if loopOnlyBelow {
			fields := payload.LowConfidence(cfg.Loop.ConfidenceThreshold)
			if len(fields) == 0 {
				s.Logger.Info("no fields below threshold, nothing to review",
					"threshold", cfg.Loop.ConfidenceThreshold)
				return nil
			}
			payload = payload.OnlyFields(fields)
		}

		opts := setup.LoopOptionsFromConfig(cfg)
		opts.Name = loopName

		rv, err := s.Review(ctx)
		if err != nil {
			return err
		}
		handle, err := rv.StartHumanLoop(ctx, loopFlowARN, payload, opts)
		if err != nil {
			return err
		}
		return output.Print(handle)
	},
}

var loopDescribeCmd = &cobra.Command{
	Use:   "describe <name>",
	Short: "Show a human loop's status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rv, err := services(cmd).Review(ctx)
		if err != nil {
			return err
		}
		status, err := rv.DescribeHumanLoop(ctx, args[0])
		if err != nil {
			return err
		}
		return output.Print(status)
	},
}

var loopOutputCmd = &cobra.Command{
	Use:   "output <name>",
	Short: "Print the reviewers' answers for a completed human loop",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := services(cmd)

		rv, err := s.Review(ctx)
		if err != nil {
			return err
		}
		status, err := rv.DescribeHumanLoop(ctx, args[0])
		if err != nil {
			return err
		}
		if !status.Completed() || status.OutputS3URI == "" {
			return fmt.Errorf("human loop %s is %s, no output yet", args[0], status.Status)
		}

		store, err := s.Outputs(ctx)
		if err != nil {
			return err
		}
		out, err := store.FetchLoopOutput(ctx, status.OutputS3URI)
		if err != nil {
			return err
		}
		return output.Print(out)
	},
}

func init() {
	loopStartCmd.Flags().StringVar(&loopFlowARN, "flow-arn", "", "flow definition ARN from 'loopctl flow create'")
	loopStartCmd.Flags().StringVar(&loopPayload, "payload", "", "payload file, JSON or YAML (default: loop.payload_path or built-in sample)")
	loopStartCmd.Flags().StringVar(&loopName, "name", "", "human loop name (default: generated)")
	loopStartCmd.Flags().BoolVar(&loopOnlyBelow, "only-below", false, "send only fields below loop.confidence_threshold")
	loopStartCmd.Flags().BoolVar(&loopNoValidate, "no-validate", false, "skip the local payload schema check (placeholders are still rejected)")
	_ = loopStartCmd.MarkFlagRequired("flow-arn")

	loopCmd.AddCommand(loopStartCmd)
	loopCmd.AddCommand(loopDescribeCmd)
	loopCmd.AddCommand(loopOutputCmd)

	rootCmd.AddCommand(loopCmd)
}
