package config

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ErrUnresolved is returned when a required setting is empty or still holds
// a <placeholder>.
var ErrUnresolved = errors.New("unresolved configuration")

// Entry documents a single configuration key and its default.
type Entry struct {
	Key         string `json:"key" yaml:"key"`
	Value       any    `json:"value" yaml:"value"`
	Description string `json:"description" yaml:"description"`
}

// DefaultEntries returns every configuration key with its default value.
// These are registered as viper defaults so env overrides reach nested keys.
func DefaultEntries() []Entry {
	d := DefaultConfig()
	return []Entry{
		// AWS
		{Key: "aws.region", Value: d.AWS.Region, Description: "AWS region for all calls"},
		{Key: "aws.profile", Value: d.AWS.Profile, Description: "Shared config profile (empty uses the default credential chain)"},

		// Deployment-owned identifiers
		{Key: "review.role_arn", Value: d.Review.RoleARN, Description: "IAM role the review service assumes to read inputs and write outputs"},
		{Key: "review.workteam_arn", Value: d.Review.WorkteamARN, Description: "Workteam that receives review tasks (see 'loopctl workforce list')"},
		{Key: "review.output_s3_path", Value: d.Review.OutputS3Path, Description: "s3:// location for reviewer answers"},
		{Key: "review.kms_key_id", Value: d.Review.KMSKeyID, Description: "Optional KMS key for output encryption"},

		// Task UI
		{Key: "task_ui.name", Value: d.TaskUI.Name, Description: "Task UI template name"},
		{Key: "task_ui.template_path", Value: d.TaskUI.TemplatePath, Description: "Liquid/HTML template file (empty uses the built-in template)"},

		// Flow definition
		{Key: "flow.name", Value: d.Flow.Name, Description: "Flow definition name"},
		{Key: "flow.task_title", Value: d.Flow.TaskTitle, Description: "Title shown to reviewers"},
		{Key: "flow.task_description", Value: d.Flow.TaskDescription, Description: "Instructions shown to reviewers"},
		{Key: "flow.task_keywords", Value: d.Flow.TaskKeywords, Description: "Keywords used to find the task"},
		{Key: "flow.task_count", Value: d.Flow.TaskCount, Description: "Reviewers per task"},
		{Key: "flow.availability_seconds", Value: d.Flow.AvailabilitySeconds, Description: "How long a task stays available to the workteam"},
		{Key: "flow.time_limit_seconds", Value: d.Flow.TimeLimitSeconds, Description: "Time a reviewer has to finish a task"},
		{Key: "flow.wait_timeout_seconds", Value: d.Flow.WaitTimeoutSeconds, Description: "How long to wait for a new flow definition to become Active"},

		// Test loops
		{Key: "loop.payload_path", Value: d.Loop.PayloadPath, Description: "Sample payload file, JSON or YAML (empty uses the built-in sample)"},
		{Key: "loop.sample_task_object", Value: d.Loop.SampleTaskObject, Description: "Document shown with the built-in sample payload (must be readable by review.role_arn)"},
		{Key: "loop.free_of_pii", Value: d.Loop.FreeOfPII, Description: "Declare test inputs free of personally identifiable information"},
		{Key: "loop.free_of_adult_content", Value: d.Loop.FreeOfAdultContent, Description: "Declare test inputs free of adult content"},
		{Key: "loop.confidence_threshold", Value: d.Loop.ConfidenceThreshold, Description: "Fields scored below this are sent for review with --only-below"},

		// Pipeline
		{Key: "pipeline.function_name", Value: d.Pipeline.FunctionName, Description: "Deployed function that starts human loops"},
		{Key: "pipeline.env_key", Value: d.Pipeline.EnvKey, Description: "Environment variable holding the flow definition ARN"},
		{Key: "pipeline.wait_timeout_seconds", Value: d.Pipeline.WaitTimeoutSeconds, Description: "How long to wait for the function update to finish"},
	}
}

var placeholderPattern = regexp.MustCompile(`<[^<>]+>`)

// IsPlaceholder reports whether value is empty or contains a <placeholder>.
func IsPlaceholder(value string) bool {
	return strings.TrimSpace(value) == "" || placeholderPattern.MatchString(value)
}

// identifierKeys are the keys Lookup knows, in display order.
var identifierKeys = []string{
	"aws.region",
	"review.role_arn",
	"review.workteam_arn",
	"review.output_s3_path",
	"task_ui.name",
	"flow.name",
	"loop.sample_task_object",
	"pipeline.function_name",
	"pipeline.env_key",
}

// Changed returns the identifier keys whose values differ between c and other.
func (c *Config) Changed(other *Config) []string {
	var keys []string
	for _, key := range identifierKeys {
		a, _ := c.Lookup(key)
		b, _ := other.Lookup(key)
		if a != b {
			keys = append(keys, key)
		}
	}
	return keys
}

// Lookup returns the string value of an identifier key.
func (c *Config) Lookup(key string) (string, bool) {
	switch key {
	case "aws.region":
		return c.AWS.Region, true
	case "review.role_arn":
		return c.Review.RoleARN, true
	case "review.workteam_arn":
		return c.Review.WorkteamARN, true
	case "review.output_s3_path":
		return c.Review.OutputS3Path, true
	case "task_ui.name":
		return c.TaskUI.Name, true
	case "flow.name":
		return c.Flow.Name, true
	case "loop.sample_task_object":
		return c.Loop.SampleTaskObject, true
	case "pipeline.function_name":
		return c.Pipeline.FunctionName, true
	case "pipeline.env_key":
		return c.Pipeline.EnvKey, true
	}
	return "", false
}

// Require checks that every key is set to a real value. All offending keys
// are reported in one error wrapping ErrUnresolved.
func (c *Config) Require(keys ...string) error {
	var missing []string
	for _, key := range keys {
		value, ok := c.Lookup(key)
		if !ok {
			return fmt.Errorf("unknown config key %q", key)
		}
		if IsPlaceholder(value) {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: set %s in config, environment (LOOPCTL_*) or flags",
		ErrUnresolved, strings.Join(missing, ", "))
}
