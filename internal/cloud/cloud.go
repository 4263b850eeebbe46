// Package cloud builds the AWS service clients used by loopctl.
package cloud

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemakera2iruntime"

	"github.com/jackzampolin/loopctl/internal/config"
)

// Clients holds one client per service, all sharing a single AWS config.
type Clients struct {
	cfg aws.Config

	SageMaker *sagemaker.Client
	Runtime   *sagemakera2iruntime.Client
	Lambda    *lambda.Client
	S3        *s3.Client
}

// Load resolves credentials and region and creates the service clients.
// No network calls are made; bad credentials surface on first use.
func Load(ctx context.Context, cfg config.AWSCfg) (*Clients, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	if awsCfg.Region == "" {
		return nil, errors.New("no aws region configured: set aws.region or AWS_REGION")
	}

	return &Clients{
		cfg:       awsCfg,
		SageMaker: sagemaker.NewFromConfig(awsCfg),
		Runtime:   sagemakera2iruntime.NewFromConfig(awsCfg),
		Lambda:    lambda.NewFromConfig(awsCfg),
		S3:        s3.NewFromConfig(awsCfg),
	}, nil
}

// Region returns the resolved region.
func (c *Clients) Region() string {
	return c.cfg.Region
}
