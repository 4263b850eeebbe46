package config

// Config holds loopctl configuration.
// Stored at: ~/.loopctl/config.yaml (or ./config.yaml)
type Config struct {
	AWS      AWSCfg      `mapstructure:"aws" yaml:"aws"`
	Review   ReviewCfg   `mapstructure:"review" yaml:"review"`
	TaskUI   TaskUICfg   `mapstructure:"task_ui" yaml:"task_ui"`
	Flow     FlowCfg     `mapstructure:"flow" yaml:"flow"`
	Loop     LoopCfg     `mapstructure:"loop" yaml:"loop"`
	Pipeline PipelineCfg `mapstructure:"pipeline" yaml:"pipeline"`
}

// AWSCfg selects the account and region.
type AWSCfg struct {
	Region  string `mapstructure:"region" yaml:"region"`
	Profile string `mapstructure:"profile" yaml:"profile"` // Shared config profile, empty for the default chain
}

// ReviewCfg holds identifiers owned by the surrounding deployment.
type ReviewCfg struct {
	RoleARN      string `mapstructure:"role_arn" yaml:"role_arn"`             // Execution role for the review service
	WorkteamARN  string `mapstructure:"workteam_arn" yaml:"workteam_arn"`     // Private workforce team
	OutputS3Path string `mapstructure:"output_s3_path" yaml:"output_s3_path"` // s3://bucket/prefix for reviewer answers
	KMSKeyID     string `mapstructure:"kms_key_id" yaml:"kms_key_id"`
}

// TaskUICfg configures the task UI template.
type TaskUICfg struct {
	Name         string `mapstructure:"name" yaml:"name"`
	TemplatePath string `mapstructure:"template_path" yaml:"template_path"` // Empty uses the built-in template
}

// FlowCfg configures the flow definition.
type FlowCfg struct {
	Name                string   `mapstructure:"name" yaml:"name"`
	TaskTitle           string   `mapstructure:"task_title" yaml:"task_title"`
	TaskDescription     string   `mapstructure:"task_description" yaml:"task_description"`
	TaskKeywords        []string `mapstructure:"task_keywords" yaml:"task_keywords"`
	TaskCount           int      `mapstructure:"task_count" yaml:"task_count"`
	AvailabilitySeconds int      `mapstructure:"availability_seconds" yaml:"availability_seconds"`
	TimeLimitSeconds    int      `mapstructure:"time_limit_seconds" yaml:"time_limit_seconds"`
	WaitTimeoutSeconds  int      `mapstructure:"wait_timeout_seconds" yaml:"wait_timeout_seconds"`
}

// LoopCfg configures test human loops.
type LoopCfg struct {
	PayloadPath         string  `mapstructure:"payload_path" yaml:"payload_path"` // Empty uses the built-in sample
	SampleTaskObject    string  `mapstructure:"sample_task_object" yaml:"sample_task_object"`
	FreeOfPII           bool    `mapstructure:"free_of_pii" yaml:"free_of_pii"`
	FreeOfAdultContent  bool    `mapstructure:"free_of_adult_content" yaml:"free_of_adult_content"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" yaml:"confidence_threshold"`
}

// PipelineCfg points at the deployed function that starts human loops.
type PipelineCfg struct {
	FunctionName       string `mapstructure:"function_name" yaml:"function_name"`
	EnvKey             string `mapstructure:"env_key" yaml:"env_key"`
	WaitTimeoutSeconds int    `mapstructure:"wait_timeout_seconds" yaml:"wait_timeout_seconds"`
}

// DefaultConfig returns configuration with sensible defaults.
// Identifiers that only the operator knows are left as <placeholders>.
func DefaultConfig() *Config {
	return &Config{
		AWS: AWSCfg{
			Region: "us-east-1",
		},
		Review: ReviewCfg{
			RoleARN:      "<role-arn>",
			WorkteamARN:  "<workteam-arn>",
			OutputS3Path: "s3://<output-bucket>/a2i-results",
		},
		TaskUI: TaskUICfg{
			Name: "document-review-ui",
		},
		Flow: FlowCfg{
			Name:                "document-review",
			TaskTitle:           "Review extracted document fields",
			TaskDescription:     "Compare each extracted value with the document and correct it if needed",
			TaskKeywords:        []string{"document", "extraction", "review"},
			TaskCount:           1,
			AvailabilitySeconds: 86400,
			TimeLimitSeconds:    3600,
			WaitTimeoutSeconds:  300,
		},
		Loop: LoopCfg{
			SampleTaskObject:    "s3://<input-bucket>/samples/document.png",
			FreeOfPII:           true,
			FreeOfAdultContent:  true,
			ConfidenceThreshold: 90,
		},
		Pipeline: PipelineCfg{
			FunctionName:       "<function-name>",
			EnvKey:             "HUMAN_WORKFLOW_ARN",
			WaitTimeoutSeconds: 60,
		},
	}
}
