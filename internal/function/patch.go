// Package function patches the environment of a deployed pipeline function.
package function

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// ErrConcurrentModification is returned when the function configuration
// changed between the read and the conditional write.
var ErrConcurrentModification = errors.New("function configuration changed since it was read")

// ErrEnvironmentUnreadable is returned when the service could not return the
// current variables (e.g. a KMS decrypt failure). Writing back would drop them.
var ErrEnvironmentUnreadable = errors.New("function environment is unreadable")

// ErrUpdateFailed is returned by WaitUpdated when the last update failed.
var ErrUpdateFailed = errors.New("function update failed")

// LambdaAPI is the subset of the Lambda client used here.
type LambdaAPI interface {
	GetFunctionConfiguration(ctx context.Context, params *lambda.GetFunctionConfigurationInput, optFns ...func(*lambda.Options)) (*lambda.GetFunctionConfigurationOutput, error)
	UpdateFunctionConfiguration(ctx context.Context, params *lambda.UpdateFunctionConfigurationInput, optFns ...func(*lambda.Options)) (*lambda.UpdateFunctionConfigurationOutput, error)
}

// Patcher rewrites single environment variables on remote functions.
type Patcher struct {
	api          LambdaAPI
	logger       *slog.Logger
	pollInterval time.Duration
}

// Option configures a Patcher.
type Option func(*Patcher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Patcher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithPollInterval sets the delay between WaitUpdated polls.
func WithPollInterval(d time.Duration) Option {
	return func(p *Patcher) {
		if d > 0 {
			p.pollInterval = d
		}
	}
}

// NewPatcher creates a Patcher over the given Lambda client.
func NewPatcher(api LambdaAPI, opts ...Option) *Patcher {
	p := &Patcher{
		api:          api,
		logger:       slog.Default(),
		pollInterval: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PatchResult describes a completed patch.
type PatchResult struct {
	FunctionName  string `json:"function_name" yaml:"function_name"`
	FunctionARN   string `json:"function_arn,omitempty" yaml:"function_arn,omitempty"`
	Key           string `json:"key" yaml:"key"`
	Value         string `json:"value" yaml:"value"`
	PreviousValue string `json:"previous_value,omitempty" yaml:"previous_value,omitempty"`
	Added         bool   `json:"added" yaml:"added"`
	Changed       bool   `json:"changed" yaml:"changed"`
	RevisionID    string `json:"revision_id,omitempty" yaml:"revision_id,omitempty"`
}

// Patch sets key=value in the function's environment and keeps every other
// variable. It does exactly one read and one write. The write is conditional
// on the revision returned by the read; a concurrent change makes it fail
// with ErrConcurrentModification and nothing is retried.
func (p *Patcher) Patch(ctx context.Context, functionName, key, value string) (*PatchResult, error) {
	current, err := p.api.GetFunctionConfiguration(ctx, &lambda.GetFunctionConfigurationInput{
		FunctionName: aws.String(functionName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get configuration for %s: %w", functionName, err)
	}

	vars := make(map[string]string)
	if env := current.Environment; env != nil {
		if env.Error != nil {
			return nil, fmt.Errorf("%w: %s: %s", ErrEnvironmentUnreadable,
				aws.ToString(env.Error.ErrorCode), aws.ToString(env.Error.Message))
		}
		for k, v := range env.Variables {
			vars[k] = v
		}
	}

	previous, existed := vars[key]
	vars[key] = value

	p.logger.Debug("updating function environment",
		"function", functionName,
		"key", key,
		"revision", aws.ToString(current.RevisionId),
		"variables", len(vars))

	updated, err := p.api.UpdateFunctionConfiguration(ctx, &lambda.UpdateFunctionConfigurationInput{
		FunctionName: aws.String(functionName),
		Environment:  &types.Environment{Variables: vars},
		RevisionId:   current.RevisionId,
	})
	if err != nil {
		var precondition *types.PreconditionFailedException
		if errors.As(err, &precondition) {
			return nil, fmt.Errorf("%w: %s: %w", ErrConcurrentModification, functionName, err)
		}
		return nil, fmt.Errorf("failed to update configuration for %s: %w", functionName, err)
	}

	result := &PatchResult{
		FunctionName:  functionName,
		FunctionARN:   aws.ToString(updated.FunctionArn),
		Key:           key,
		Value:         value,
		PreviousValue: previous,
		Added:         !existed,
		Changed:       !existed || previous != value,
		RevisionID:    aws.ToString(updated.RevisionId),
	}
	p.logger.Info("patched function environment",
		"function", functionName, "key", key, "added", result.Added, "changed", result.Changed)
	return result, nil
}

// Environment returns the function's current environment variables.
func (p *Patcher) Environment(ctx context.Context, functionName string) (map[string]string, error) {
	current, err := p.api.GetFunctionConfiguration(ctx, &lambda.GetFunctionConfigurationInput{
		FunctionName: aws.String(functionName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get configuration for %s: %w", functionName, err)
	}
	vars := make(map[string]string)
	if current.Environment != nil {
		for k, v := range current.Environment.Variables {
			vars[k] = v
		}
	}
	return vars, nil
}

// WaitUpdated polls until the function's last update has finished.
func (p *Patcher) WaitUpdated(ctx context.Context, functionName string, timeout time.Duration) error {
	// A zero or negative timeout still polls once.
	attempts := uint(1)
	if timeout > p.pollInterval {
		attempts = uint(timeout / p.pollInterval)
	}

	return retry.Do(
		func() error {
			cfg, err := p.api.GetFunctionConfiguration(ctx, &lambda.GetFunctionConfigurationInput{
				FunctionName: aws.String(functionName),
			})
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to get configuration for %s: %w", functionName, err))
			}
			switch cfg.LastUpdateStatus {
			case types.LastUpdateStatusSuccessful, "":
				return nil
			case types.LastUpdateStatusFailed:
				return retry.Unrecoverable(fmt.Errorf("%w: %s", ErrUpdateFailed, aws.ToString(cfg.LastUpdateStatusReason)))
			default:
				p.logger.Debug("function update in progress", "function", functionName, "status", cfg.LastUpdateStatus)
				return fmt.Errorf("function %s update status: %s", functionName, cfg.LastUpdateStatus)
			}
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(p.pollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}
