package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/loopctl/internal/output"
	"github.com/jackzampolin/loopctl/internal/setup"
)

var flowCmd = &cobra.Command{
	Use:   "flow",
	Short: "Manage review flow definitions",
	Long: `Manage flow definitions.

A flow definition binds a task UI, a workteam and an output location.
The pipeline starts human loops against its ARN.

Examples:
  loopctl flow create --task-ui-arn arn:aws:sagemaker:...:human-task-ui/doc-ui
  loopctl flow describe document-review
  loopctl flow wait document-review --timeout 5m`,
}

var (
	flowName            string
	flowTaskUIARN       string
	flowWait            bool
	flowSkipBucketCheck bool
	flowWaitTimeout     time.Duration
)

func flowNameFrom(cmd *cobra.Command, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if flowName != "" {
		return flowName
	}
	return services(cmd).Config.Get().Flow.Name
}

var flowCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a flow definition",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := services(cmd)
		cfg := s.Config.Get()

		if err := cfg.Require("review.role_arn", "review.workteam_arn", "review.output_s3_path"); err != nil {
			return err
		}

		spec := setup.FlowSpecFromConfig(cfg)
		spec.Name = flowNameFrom(cmd, args)
		spec.TaskUIARN = flowTaskUIARN

		if !flowSkipBucketCheck {
			store, err := s.Outputs(ctx)
			if err != nil {
				return err
			}
			if err := store.CheckBucket(ctx, spec.OutputS3Path); err != nil {
				return err
			}
		}

		rv, err := s.Review(ctx)
		if err != nil {
			return err
		}
		arn, err := rv.CreateFlowDefinition(ctx, spec)
		if err != nil {
			return err
		}
		if flowWait {
			timeout := time.Duration(cfg.Flow.WaitTimeoutSeconds) * time.Second
			if err := rv.WaitFlowActive(ctx, spec.Name, timeout); err != nil {
				return err
			}
		}

		return output.Print(map[string]string{"name": spec.Name, "flow_arn": arn})
	},
}

var flowDescribeCmd = &cobra.Command{
	Use:   "describe [name]",
	Short: "Show a flow definition's status",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rv, err := services(cmd).Review(ctx)
		if err != nil {
			return err
		}
		status, err := rv.DescribeFlow(ctx, flowNameFrom(cmd, args))
		if err != nil {
			return err
		}
		return output.Print(status)
	},
}

var flowWaitCmd = &cobra.Command{
	Use:   "wait [name]",
	Short: "Wait for a flow definition to become Active",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := services(cmd)
		name := flowNameFrom(cmd, args)

		rv, err := s.Review(ctx)
		if err != nil {
			return err
		}
		watchConfig(s)
		s.Logger.Info("waiting for flow definition", "name", name, "timeout", flowWaitTimeout)
		if err := rv.WaitFlowActive(ctx, name, flowWaitTimeout); err != nil {
			return err
		}
		status, err := rv.DescribeFlow(ctx, name)
		if err != nil {
			return err
		}
		return output.Print(status)
	},
}

func init() {
	flowCmd.PersistentFlags().StringVar(&flowName, "name", "", "flow definition name (default: flow.name)")

	flowCreateCmd.Flags().StringVar(&flowTaskUIARN, "task-ui-arn", "", "task UI ARN from 'loopctl template create'")
	flowCreateCmd.Flags().BoolVar(&flowWait, "wait", true, "wait until the flow definition is Active")
	flowCreateCmd.Flags().BoolVar(&flowSkipBucketCheck, "skip-bucket-check", false, "do not check the output bucket first")
	_ = flowCreateCmd.MarkFlagRequired("task-ui-arn")

	flowWaitCmd.Flags().DurationVar(&flowWaitTimeout, "timeout", 5*time.Minute, "how long to wait")

	flowCmd.AddCommand(flowCreateCmd)
	flowCmd.AddCommand(flowDescribeCmd)
	flowCmd.AddCommand(flowWaitCmd)

	rootCmd.AddCommand(flowCmd)
}
