package humanloop

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"

	"github.com/jackzampolin/loopctl/internal/review"
)

// RenderError lists the problems the service reported while rendering.
type RenderError struct {
	Problems []RenderProblem
}

// RenderProblem is one rendering error.
type RenderProblem struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

func (e *RenderError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = fmt.Sprintf("%s: %s", p.Code, p.Message)
	}
	return "template rendering failed: " + strings.Join(parts, "; ")
}

// LoadTemplate returns the contents of path, or DefaultTemplate if path is empty.
func LoadTemplate(path string) (string, error) {
	if path == "" {
		return DefaultTemplate, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}
	return string(data), nil
}

// RenderTemplate renders template content against payload and returns the markup.
// The role must be able to read the task object so the preview can show it.
func (c *Client) RenderTemplate(ctx context.Context, content string, payload *review.Payload, roleARN string) (string, error) {
	input, err := payload.InputContent()
	if err != nil {
		return "", err
	}

	out, err := c.sm.RenderUiTemplate(ctx, &sagemaker.RenderUiTemplateInput{
		UiTemplate: &types.UiTemplate{Content: aws.String(content)},
		Task:       &types.RenderableTask{Input: aws.String(input)},
		RoleArn:    aws.String(roleARN),
	})
	if err != nil {
		return "", fmt.Errorf("render ui template: %w", err)
	}

	if len(out.Errors) > 0 {
		rerr := &RenderError{}
		for _, e := range out.Errors {
			rerr.Problems = append(rerr.Problems, RenderProblem{
				Code:    aws.ToString(e.Code),
				Message: aws.ToString(e.Message),
			})
		}
		return "", rerr
	}

	c.logger.Debug("rendered template", "bytes", len(aws.ToString(out.RenderedContent)))
	return aws.ToString(out.RenderedContent), nil
}

// CreateTaskUI registers a task UI template and returns its ARN.
func (c *Client) CreateTaskUI(ctx context.Context, name, content string) (string, error) {
	out, err := c.sm.CreateHumanTaskUi(ctx, &sagemaker.CreateHumanTaskUiInput{
		HumanTaskUiName: aws.String(name),
		UiTemplate:      &types.UiTemplate{Content: aws.String(content)},
	})
	if err != nil {
		return "", fmt.Errorf("create human task ui %s: %w", name, err)
	}

	arn := aws.ToString(out.HumanTaskUiArn)
	c.logger.Info("created task UI", "name", name, "arn", arn)
	return arn, nil
}
