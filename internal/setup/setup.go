// Package setup runs the provisioning walkthrough end to end: render the
// task UI, register it, create the flow definition, optionally send a test
// task, and point the pipeline function at the new flow.
//
// Steps run strictly in order and stop at the first error. Identifiers from
// earlier steps are threaded into later ones; everything that was created
// before a failure is still reported in the Result.
package setup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jackzampolin/loopctl/internal/function"
	"github.com/jackzampolin/loopctl/internal/humanloop"
	"github.com/jackzampolin/loopctl/internal/review"
)

// ReviewService is the review service surface the walkthrough needs.
type ReviewService interface {
	RenderTemplate(ctx context.Context, content string, payload *review.Payload, roleARN string) (string, error)
	CreateTaskUI(ctx context.Context, name, content string) (string, error)
	CreateFlowDefinition(ctx context.Context, spec humanloop.FlowSpec) (string, error)
	WaitFlowActive(ctx context.Context, name string, timeout time.Duration) error
	StartHumanLoop(ctx context.Context, flowARN string, payload *review.Payload, opts humanloop.StartOptions) (*humanloop.LoopHandle, error)
}

// EnvPatcher updates a function's environment.
type EnvPatcher interface {
	Patch(ctx context.Context, functionName, key, value string) (*function.PatchResult, error)
	WaitUpdated(ctx context.Context, functionName string, timeout time.Duration) error
}

// BucketChecker verifies an output location before anything is created.
type BucketChecker interface {
	CheckBucket(ctx context.Context, uri string) error
}

// Plan is everything the walkthrough needs, resolved up front.
type Plan struct {
	TemplateName    string
	TemplateContent string
	RenderedFile    string
	Payload         *review.Payload
	Flow            humanloop.FlowSpec
	FlowWait        time.Duration

	StartTestLoop bool
	LoopOptions   humanloop.StartOptions

	FunctionName string
	EnvKey       string
	FunctionWait time.Duration

	SkipRender bool
	SkipPatch  bool
}

// Result lists what the walkthrough produced.
type Result struct {
	RenderedFile string                `json:"rendered_file,omitempty" yaml:"rendered_file,omitempty"`
	TaskUIARN    string                `json:"task_ui_arn,omitempty" yaml:"task_ui_arn,omitempty"`
	FlowARN      string                `json:"flow_arn,omitempty" yaml:"flow_arn,omitempty"`
	TestLoop     *humanloop.LoopHandle `json:"test_loop,omitempty" yaml:"test_loop,omitempty"`
	Patch        *function.PatchResult `json:"patch,omitempty" yaml:"patch,omitempty"`
}

// Runner executes a Plan.
type Runner struct {
	review  ReviewService
	patcher EnvPatcher
	buckets BucketChecker
	logger  *slog.Logger
}

// NewRunner creates a Runner. buckets may be nil to skip the output preflight.
func NewRunner(svc ReviewService, patcher EnvPatcher, buckets BucketChecker, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		review:  svc,
		patcher: patcher,
		buckets: buckets,
		logger:  logger,
	}
}

// Run executes the plan. The returned Result is non-nil even on error.
func (r *Runner) Run(ctx context.Context, plan *Plan) (*Result, error) {
	result := &Result{}

	if !plan.SkipRender || plan.StartTestLoop {
		if err := plan.Payload.Validate(); err != nil {
			return result, fmt.Errorf("preflight: %w", err)
		}
	}

	if r.buckets != nil {
		r.logger.Info("checking output location", "step", "preflight", "uri", plan.Flow.OutputS3Path)
		if err := r.buckets.CheckBucket(ctx, plan.Flow.OutputS3Path); err != nil {
			return result, fmt.Errorf("preflight: %w", err)
		}
	}

	if !plan.SkipRender {
		r.logger.Info("rendering template", "step", "render", "template", plan.TemplateName)
		markup, err := r.review.RenderTemplate(ctx, plan.TemplateContent, plan.Payload, plan.Flow.RoleARN)
		if err != nil {
			return result, fmt.Errorf("render: %w", err)
		}
		if err := writeRendered(plan.RenderedFile, markup); err != nil {
			return result, fmt.Errorf("render: %w", err)
		}
		result.RenderedFile = plan.RenderedFile
		r.logger.Info("rendered template written", "step", "render", "path", plan.RenderedFile)
	}

	r.logger.Info("creating task UI", "step", "task_ui", "name", plan.TemplateName)
	taskUIARN, err := r.review.CreateTaskUI(ctx, plan.TemplateName, plan.TemplateContent)
	if err != nil {
		return result, fmt.Errorf("task ui: %w", err)
	}
	result.TaskUIARN = taskUIARN

	spec := plan.Flow
	spec.TaskUIARN = taskUIARN
	r.logger.Info("creating flow definition", "step", "flow", "name", spec.Name, "workteam", spec.WorkteamARN)
	flowARN, err := r.review.CreateFlowDefinition(ctx, spec)
	if err != nil {
		return result, fmt.Errorf("flow definition: %w", err)
	}
	result.FlowARN = flowARN

	if plan.FlowWait > 0 {
		r.logger.Info("waiting for flow definition", "step", "flow", "timeout", plan.FlowWait)
		if err := r.review.WaitFlowActive(ctx, spec.Name, plan.FlowWait); err != nil {
			return result, fmt.Errorf("flow definition: %w", err)
		}
	}

	if plan.StartTestLoop {
		r.logger.Info("starting test human loop", "step", "test_loop")
		handle, err := r.review.StartHumanLoop(ctx, flowARN, plan.Payload, plan.LoopOptions)
		if err != nil {
			return result, fmt.Errorf("test loop: %w", err)
		}
		result.TestLoop = handle
	}

	if plan.SkipPatch {
		return result, nil
	}

	r.logger.Info("pointing pipeline at flow definition", "step", "patch",
		"function", plan.FunctionName, "key", plan.EnvKey)
	patch, err := r.patcher.Patch(ctx, plan.FunctionName, plan.EnvKey, flowARN)
	if err != nil {
		return result, fmt.Errorf("patch: %w", err)
	}
	result.Patch = patch

	if plan.FunctionWait > 0 {
		if err := r.patcher.WaitUpdated(ctx, plan.FunctionName, plan.FunctionWait); err != nil {
			return result, fmt.Errorf("patch: %w", err)
		}
	}

	return result, nil
}

func writeRendered(path, markup string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(markup), 0o644); err != nil {
		return fmt.Errorf("failed to write rendered template: %w", err)
	}
	return nil
}
