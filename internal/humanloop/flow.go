package humanloop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
)

// ErrFlowFailed is returned when a flow definition ends up in the Failed state.
var ErrFlowFailed = errors.New("flow definition failed")

// FlowSpec binds a task UI, a workteam and an output location.
type FlowSpec struct {
	Name          string
	TaskUIARN     string
	WorkteamARN   string
	RoleARN       string
	OutputS3Path  string
	KMSKeyID      string
	TaskTitle     string
	TaskDesc      string
	TaskKeywords  []string
	TaskCount     int32
	AvailableFor  time.Duration
	TaskTimeLimit time.Duration
}

func (s FlowSpec) humanLoopConfig() *types.HumanLoopConfig {
	cfg := &types.HumanLoopConfig{
		HumanTaskUiArn:  aws.String(s.TaskUIARN),
		WorkteamArn:     aws.String(s.WorkteamARN),
		TaskTitle:       aws.String(s.TaskTitle),
		TaskDescription: aws.String(s.TaskDesc),
		TaskCount:       aws.Int32(1),
	}
	if s.TaskCount > 0 {
		cfg.TaskCount = aws.Int32(s.TaskCount)
	}
	if len(s.TaskKeywords) > 0 {
		cfg.TaskKeywords = s.TaskKeywords
	}
	if s.AvailableFor > 0 {
		cfg.TaskAvailabilityLifetimeInSeconds = aws.Int32(int32(s.AvailableFor.Seconds()))
	}
	if s.TaskTimeLimit > 0 {
		cfg.TaskTimeLimitInSeconds = aws.Int32(int32(s.TaskTimeLimit.Seconds()))
	}
	return cfg
}

// CreateFlowDefinition creates a review workflow and returns its ARN.
func (c *Client) CreateFlowDefinition(ctx context.Context, spec FlowSpec) (string, error) {
	output := &types.FlowDefinitionOutputConfig{S3OutputPath: aws.String(spec.OutputS3Path)}
	if spec.KMSKeyID != "" {
		output.KmsKeyId = aws.String(spec.KMSKeyID)
	}

	out, err := c.sm.CreateFlowDefinition(ctx, &sagemaker.CreateFlowDefinitionInput{
		FlowDefinitionName: aws.String(spec.Name),
		HumanLoopConfig:    spec.humanLoopConfig(),
		OutputConfig:       output,
		RoleArn:            aws.String(spec.RoleARN),
	})
	if err != nil {
		return "", fmt.Errorf("create flow definition %s: %w", spec.Name, err)
	}

	arn := aws.ToString(out.FlowDefinitionArn)
	c.logger.Info("created flow definition", "name", spec.Name, "arn", arn)
	return arn, nil
}

// FlowStatus summarizes a flow definition.
type FlowStatus struct {
	Name          string `json:"name" yaml:"name"`
	ARN           string `json:"arn" yaml:"arn"`
	Status        string `json:"status" yaml:"status"`
	FailureReason string `json:"failure_reason,omitempty" yaml:"failure_reason,omitempty"`
	TaskUIARN     string `json:"task_ui_arn,omitempty" yaml:"task_ui_arn,omitempty"`
	WorkteamARN   string `json:"workteam_arn,omitempty" yaml:"workteam_arn,omitempty"`
	OutputS3Path  string `json:"output_s3_path,omitempty" yaml:"output_s3_path,omitempty"`
}

// DescribeFlow returns the current status of a flow definition.
func (c *Client) DescribeFlow(ctx context.Context, name string) (*FlowStatus, error) {
	out, err := c.sm.DescribeFlowDefinition(ctx, &sagemaker.DescribeFlowDefinitionInput{
		FlowDefinitionName: aws.String(name),
	})
	if err != nil {
		return nil, fmt.Errorf("describe flow definition %s: %w", name, err)
	}

	status := &FlowStatus{
		Name:          aws.ToString(out.FlowDefinitionName),
		ARN:           aws.ToString(out.FlowDefinitionArn),
		Status:        string(out.FlowDefinitionStatus),
		FailureReason: aws.ToString(out.FailureReason),
	}
	if hl := out.HumanLoopConfig; hl != nil {
		status.TaskUIARN = aws.ToString(hl.HumanTaskUiArn)
		status.WorkteamARN = aws.ToString(hl.WorkteamArn)
	}
	if oc := out.OutputConfig; oc != nil {
		status.OutputS3Path = aws.ToString(oc.S3OutputPath)
	}
	return status, nil
}

// WaitFlowActive polls until the flow definition is Active.
// A Failed flow stops polling and returns ErrFlowFailed.
func (c *Client) WaitFlowActive(ctx context.Context, name string, timeout time.Duration) error {
	// A zero or negative timeout still polls once.
	attempts := uint(1)
	if timeout > c.pollInterval {
		attempts = uint(timeout / c.pollInterval)
	}

	return retry.Do(
		func() error {
			status, err := c.DescribeFlow(ctx, name)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			switch types.FlowDefinitionStatus(status.Status) {
			case types.FlowDefinitionStatusActive:
				return nil
			case types.FlowDefinitionStatusFailed, types.FlowDefinitionStatusDeleting:
				return retry.Unrecoverable(fmt.Errorf("%w: %s (%s)", ErrFlowFailed, name, status.FailureReason))
			default:
				c.logger.Debug("waiting for flow definition", "name", name, "status", status.Status)
				return fmt.Errorf("flow definition %s is %s", name, status.Status)
			}
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(c.pollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}
