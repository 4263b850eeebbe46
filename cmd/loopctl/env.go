package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/loopctl/internal/output"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Read and patch the pipeline function's environment",
	Long: `Read and patch the pipeline function's environment.

The pipeline reads the flow definition ARN from an environment variable.
'env patch' changes that one variable and keeps all others. The write only
succeeds if nobody changed the function since it was read.

Examples:
  loopctl env show
  loopctl env patch arn:aws:sagemaker:us-east-1:123456789012:flow-definition/document-review
  loopctl env patch --function doc-pipeline --key HUMAN_WORKFLOW_ARN <arn>`,
}

var (
	envFunction string
	envKey      string
	envWait     bool
)

// envTarget resolves the function and variable from flags and config.
// The key is only required when patching.
func envTarget(cmd *cobra.Command, needKey bool) (string, string, error) {
	cfg := services(cmd).Config.Get()
	fn, key := cfg.Pipeline.FunctionName, cfg.Pipeline.EnvKey

	var required []string
	if envFunction != "" {
		fn = envFunction
	} else {
		required = append(required, "pipeline.function_name")
	}
	if envKey != "" {
		key = envKey
	} else if needKey {
		required = append(required, "pipeline.env_key")
	}
	if err := cfg.Require(required...); err != nil {
		return "", "", err
	}
	return fn, key, nil
}

var envPatchCmd = &cobra.Command{
	Use:   "patch <value>",
	Short: "Set one environment variable on the pipeline function",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s := services(cmd)

		fn, key, err := envTarget(cmd, true)
		if err != nil {
			return err
		}
		patcher, err := s.Patcher(ctx)
		if err != nil {
			return err
		}
		result, err := patcher.Patch(ctx, fn, key, args[0])
		if err != nil {
			return err
		}
		if envWait {
			timeout := time.Duration(s.Config.Get().Pipeline.WaitTimeoutSeconds) * time.Second
			if err := patcher.WaitUpdated(ctx, fn, timeout); err != nil {
				return err
			}
		}
		return output.Print(result)
	},
}

var envShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the pipeline function's environment",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		fn, _, err := envTarget(cmd, false)
		if err != nil {
			return err
		}
		patcher, err := services(cmd).Patcher(ctx)
		if err != nil {
			return err
		}
		vars, err := patcher.Environment(ctx, fn)
		if err != nil {
			return err
		}
		return output.Print(vars)
	},
}

func init() {
	envCmd.PersistentFlags().StringVar(&envFunction, "function", "", "function name or ARN (default: pipeline.function_name)")
	envPatchCmd.Flags().StringVar(&envKey, "key", "", "variable to set (default: pipeline.env_key)")
	envPatchCmd.Flags().BoolVar(&envWait, "wait", true, "wait for the function update to finish")

	envCmd.AddCommand(envPatchCmd)
	envCmd.AddCommand(envShowCmd)

	rootCmd.AddCommand(envCmd)
}
