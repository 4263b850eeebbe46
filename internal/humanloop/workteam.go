package humanloop

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
)

// Workteam is a group of reviewers a flow definition can route tasks to.
type Workteam struct {
	Name         string `json:"name" yaml:"name"`
	ARN          string `json:"arn" yaml:"arn"`
	WorkforceARN string `json:"workforce_arn,omitempty" yaml:"workforce_arn,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ListWorkteams returns the account's workteams, optionally filtered by name.
func (c *Client) ListWorkteams(ctx context.Context, nameContains string) ([]Workteam, error) {
	input := &sagemaker.ListWorkteamsInput{}
	if nameContains != "" {
		input.NameContains = aws.String(nameContains)
	}

	var teams []Workteam
	pager := sagemaker.NewListWorkteamsPaginator(c.sm, input)
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list workteams: %w", err)
		}
		for _, wt := range page.Workteams {
			teams = append(teams, Workteam{
				Name:         aws.ToString(wt.WorkteamName),
				ARN:          aws.ToString(wt.WorkteamArn),
				WorkforceARN: aws.ToString(wt.WorkforceArn),
				Description:  aws.ToString(wt.Description),
			})
		}
	}
	return teams, nil
}
