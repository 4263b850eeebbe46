package humanloop

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemakera2iruntime"
	"github.com/aws/aws-sdk-go-v2/service/sagemakera2iruntime/types"
	"github.com/google/uuid"

	"github.com/jackzampolin/loopctl/internal/review"
)

// StartOptions are optional settings for a human loop.
type StartOptions struct {
	// Name of the loop. Generated when empty.
	Name string
	// Content classifiers declared on the input. Required by some workforces.
	FreeOfPII          bool
	FreeOfAdultContent bool
}

// LoopHandle identifies a started human loop.
type LoopHandle struct {
	Name string `json:"name" yaml:"name"`
	ARN  string `json:"arn" yaml:"arn"`
}

// NewLoopName returns a unique loop name accepted by the service.
func NewLoopName() string {
	return "loop-" + uuid.New().String()
}

// StartHumanLoop sends payload to the workforce under flowARN.
func (c *Client) StartHumanLoop(ctx context.Context, flowARN string, payload *review.Payload, opts StartOptions) (*LoopHandle, error) {
	input, err := payload.InputContent()
	if err != nil {
		return nil, err
	}

	name := opts.Name
	if name == "" {
		name = NewLoopName()
	}

	req := &sagemakera2iruntime.StartHumanLoopInput{
		HumanLoopName:     aws.String(name),
		FlowDefinitionArn: aws.String(flowARN),
		HumanLoopInput:    &types.HumanLoopInput{InputContent: aws.String(input)},
	}
	var classifiers []types.ContentClassifier
	if opts.FreeOfPII {
		classifiers = append(classifiers, types.ContentClassifierFreeOfPersonallyIdentifiableInformation)
	}
	if opts.FreeOfAdultContent {
		classifiers = append(classifiers, types.ContentClassifierFreeOfAdultContent)
	}
	if len(classifiers) > 0 {
		req.DataAttributes = &types.HumanLoopDataAttributes{ContentClassifiers: classifiers}
	}

	out, err := c.rt.StartHumanLoop(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("start human loop %s: %w", name, err)
	}

	handle := &LoopHandle{Name: name, ARN: aws.ToString(out.HumanLoopArn)}
	c.logger.Info("started human loop", "name", handle.Name, "arn", handle.ARN)
	return handle, nil
}

// LoopStatus summarizes a human loop.
type LoopStatus struct {
	Name          string    `json:"name" yaml:"name"`
	ARN           string    `json:"arn" yaml:"arn"`
	Status        string    `json:"status" yaml:"status"`
	FlowARN       string    `json:"flow_arn" yaml:"flow_arn"`
	OutputS3URI   string    `json:"output_s3_uri,omitempty" yaml:"output_s3_uri,omitempty"`
	FailureCode   string    `json:"failure_code,omitempty" yaml:"failure_code,omitempty"`
	FailureReason string    `json:"failure_reason,omitempty" yaml:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
}

// Completed reports whether the loop finished and has output.
func (s *LoopStatus) Completed() bool {
	return s.Status == string(types.HumanLoopStatusCompleted)
}

// DescribeHumanLoop returns the current state of a human loop.
func (c *Client) DescribeHumanLoop(ctx context.Context, name string) (*LoopStatus, error) {
	out, err := c.rt.DescribeHumanLoop(ctx, &sagemakera2iruntime.DescribeHumanLoopInput{
		HumanLoopName: aws.String(name),
	})
	if err != nil {
		return nil, fmt.Errorf("describe human loop %s: %w", name, err)
	}

	status := &LoopStatus{
		Name:          aws.ToString(out.HumanLoopName),
		ARN:           aws.ToString(out.HumanLoopArn),
		Status:        string(out.HumanLoopStatus),
		FlowARN:       aws.ToString(out.FlowDefinitionArn),
		FailureCode:   aws.ToString(out.FailureCode),
		FailureReason: aws.ToString(out.FailureReason),
		CreatedAt:     aws.ToTime(out.CreationTime),
	}
	if out.HumanLoopOutput != nil {
		status.OutputS3URI = aws.ToString(out.HumanLoopOutput.OutputS3Uri)
	}
	return status, nil
}
