package setup

import (
	"time"

	"github.com/jackzampolin/loopctl/internal/config"
	"github.com/jackzampolin/loopctl/internal/humanloop"
	"github.com/jackzampolin/loopctl/internal/review"
)

// FlowSpecFromConfig builds a flow definition spec from configuration.
// TaskUIARN is left for the caller.
func FlowSpecFromConfig(cfg *config.Config) humanloop.FlowSpec {
	return humanloop.FlowSpec{
		Name:          cfg.Flow.Name,
		WorkteamARN:   cfg.Review.WorkteamARN,
		RoleARN:       cfg.Review.RoleARN,
		OutputS3Path:  cfg.Review.OutputS3Path,
		KMSKeyID:      cfg.Review.KMSKeyID,
		TaskTitle:     cfg.Flow.TaskTitle,
		TaskDesc:      cfg.Flow.TaskDescription,
		TaskKeywords:  cfg.Flow.TaskKeywords,
		TaskCount:     int32(cfg.Flow.TaskCount),
		AvailableFor:  time.Duration(cfg.Flow.AvailabilitySeconds) * time.Second,
		TaskTimeLimit: time.Duration(cfg.Flow.TimeLimitSeconds) * time.Second,
	}
}

// LoopOptionsFromConfig builds human loop options from configuration.
func LoopOptionsFromConfig(cfg *config.Config) humanloop.StartOptions {
	return humanloop.StartOptions{
		FreeOfPII:          cfg.Loop.FreeOfPII,
		FreeOfAdultContent: cfg.Loop.FreeOfAdultContent,
	}
}

// LoadPayload returns the configured sample payload, or the built-in one
// pointed at loop.sample_task_object.
func LoadPayload(cfg *config.Config) (*review.Payload, error) {
	if cfg.Loop.PayloadPath == "" {
		p := review.SamplePayload()
		p.TaskObject = cfg.Loop.SampleTaskObject
		return p, nil
	}
	return review.LoadPayload(cfg.Loop.PayloadPath)
}

// PayloadKeys lists the settings the sample payload needs. A payload file
// carries its own task object.
func PayloadKeys(cfg *config.Config) []string {
	if cfg.Loop.PayloadPath != "" {
		return nil
	}
	return []string{"loop.sample_task_object"}
}

// RequiredKeys lists the settings a full walkthrough cannot run without.
func RequiredKeys(skipPatch bool) []string {
	keys := []string{
		"review.role_arn",
		"review.workteam_arn",
		"review.output_s3_path",
		"task_ui.name",
		"flow.name",
	}
	if !skipPatch {
		keys = append(keys, "pipeline.function_name", "pipeline.env_key")
	}
	return keys
}

// NewPlan resolves a Plan from configuration. renderedFile is where the
// preview markup is written.
func NewPlan(cfg *config.Config, renderedFile string) (*Plan, error) {
	content, err := humanloop.LoadTemplate(cfg.TaskUI.TemplatePath)
	if err != nil {
		return nil, err
	}
	payload, err := LoadPayload(cfg)
	if err != nil {
		return nil, err
	}

	return &Plan{
		TemplateName:    cfg.TaskUI.Name,
		TemplateContent: content,
		RenderedFile:    renderedFile,
		Payload:         payload,
		Flow:            FlowSpecFromConfig(cfg),
		FlowWait:        time.Duration(cfg.Flow.WaitTimeoutSeconds) * time.Second,
		LoopOptions:     LoopOptionsFromConfig(cfg),
		FunctionName:    cfg.Pipeline.FunctionName,
		EnvKey:          cfg.Pipeline.EnvKey,
		FunctionWait:    time.Duration(cfg.Pipeline.WaitTimeoutSeconds) * time.Second,
	}, nil
}
