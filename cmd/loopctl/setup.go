package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/loopctl/internal/output"
	"github.com/jackzampolin/loopctl/internal/setup"
)

var (
	setupSkipRender      bool
	setupSkipPatch       bool
	setupTestLoop        bool
	setupNoWait          bool
	setupSkipBucketCheck bool
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Run every provisioning step in order",
	Long: `Run the whole walkthrough:

  1. Render the task UI template with the sample payload and save the markup
  2. Register the task UI
  3. Create the flow definition and wait until it is Active
  4. Optionally start a test human loop (--test-loop)
  5. Set the flow definition ARN on the pipeline function

Every step stops on error. Resources created before a failure are
printed so they can be reused or cleaned up.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := services(cmd)
		cfg := s.Config.Get()

		keys := setup.RequiredKeys(setupSkipPatch)
		if !setupSkipRender || setupTestLoop {
			keys = append(keys, setup.PayloadKeys(cfg)...)
		}
		if err := cfg.Require(keys...); err != nil {
			return err
		}
		if err := s.Home.EnsureExists(); err != nil {
			return err
		}

		watchConfig(s)

		plan, err := setup.NewPlan(cfg, s.Home.RenderedFile(cfg.TaskUI.Name, time.Now()))
		if err != nil {
			return err
		}
		plan.SkipRender = setupSkipRender
		plan.SkipPatch = setupSkipPatch
		plan.StartTestLoop = setupTestLoop
		if setupNoWait {
			plan.FlowWait = 0
			plan.FunctionWait = 0
		}

		rv, err := s.Review(ctx)
		if err != nil {
			return err
		}
		patcher, err := s.Patcher(ctx)
		if err != nil {
			return err
		}
		var buckets setup.BucketChecker
		if !setupSkipBucketCheck {
			if buckets, err = s.Outputs(ctx); err != nil {
				return err
			}
		}

		result, runErr := setup.NewRunner(rv, patcher, buckets, s.Logger).Run(ctx, plan)
		if err := output.Print(result); err != nil {
			return err
		}
		return runErr
	},
}

func init() {
	setupCmd.Flags().BoolVar(&setupSkipRender, "skip-render", false, "do not render a preview of the template")
	setupCmd.Flags().BoolVar(&setupSkipPatch, "skip-patch", false, "do not touch the pipeline function")
	setupCmd.Flags().BoolVar(&setupTestLoop, "test-loop", false, "start a test human loop with the sample payload")
	setupCmd.Flags().BoolVar(&setupNoWait, "no-wait", false, "do not wait for the flow definition or function update")
	setupCmd.Flags().BoolVar(&setupSkipBucketCheck, "skip-bucket-check", false, "do not check the output bucket first")

	rootCmd.AddCommand(setupCmd)
}
