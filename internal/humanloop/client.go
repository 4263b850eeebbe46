// Package humanloop wraps the managed human review service: task UI
// templates, flow definitions and human loops.
//
// Each call is a pass-through. Identifiers returned by one call are meant to
// be handed to the next by the caller; nothing is cached here.
package humanloop

import (
	"context"
	_ "embed"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemakera2iruntime"
)

// DefaultTemplate is the built-in task UI used when no template file is given.
// It shows the task object next to one input per extracted field.
//
//go:embed templates/default.html
var DefaultTemplate string

// SageMakerAPI is the subset of the SageMaker client used here.
type SageMakerAPI interface {
	RenderUiTemplate(ctx context.Context, params *sagemaker.RenderUiTemplateInput, optFns ...func(*sagemaker.Options)) (*sagemaker.RenderUiTemplateOutput, error)
	CreateHumanTaskUi(ctx context.Context, params *sagemaker.CreateHumanTaskUiInput, optFns ...func(*sagemaker.Options)) (*sagemaker.CreateHumanTaskUiOutput, error)
	CreateFlowDefinition(ctx context.Context, params *sagemaker.CreateFlowDefinitionInput, optFns ...func(*sagemaker.Options)) (*sagemaker.CreateFlowDefinitionOutput, error)
	DescribeFlowDefinition(ctx context.Context, params *sagemaker.DescribeFlowDefinitionInput, optFns ...func(*sagemaker.Options)) (*sagemaker.DescribeFlowDefinitionOutput, error)
	ListWorkteams(ctx context.Context, params *sagemaker.ListWorkteamsInput, optFns ...func(*sagemaker.Options)) (*sagemaker.ListWorkteamsOutput, error)
}

// RuntimeAPI is the subset of the human loop runtime client used here.
type RuntimeAPI interface {
	StartHumanLoop(ctx context.Context, params *sagemakera2iruntime.StartHumanLoopInput, optFns ...func(*sagemakera2iruntime.Options)) (*sagemakera2iruntime.StartHumanLoopOutput, error)
	DescribeHumanLoop(ctx context.Context, params *sagemakera2iruntime.DescribeHumanLoopInput, optFns ...func(*sagemakera2iruntime.Options)) (*sagemakera2iruntime.DescribeHumanLoopOutput, error)
}

// Client issues review service calls.
type Client struct {
	sm           SageMakerAPI
	rt           RuntimeAPI
	logger       *slog.Logger
	pollInterval time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPollInterval sets the delay between status polls.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// NewClient creates a review service client.
func NewClient(sm SageMakerAPI, rt RuntimeAPI, opts ...Option) *Client {
	c := &Client{
		sm:           sm,
		rt:           rt,
		logger:       slog.Default(),
		pollInterval: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
