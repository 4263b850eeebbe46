// Package outputs reads and checks the object storage locations a flow
// definition writes reviewer answers to.
package outputs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

var (
	// ErrInvalidURI is returned for locations that are not s3://bucket[/key].
	ErrInvalidURI = errors.New("invalid s3 uri")

	// ErrBucketNotFound is returned when the output bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")

	// ErrBucketForbidden is returned when the caller may not use the output bucket.
	ErrBucketForbidden = errors.New("bucket access denied")
)

// S3API is the subset of the S3 client used here.
type S3API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Location is a parsed s3:// URI.
type Location struct {
	Bucket string
	Key    string
}

func (l Location) String() string {
	if l.Key == "" {
		return "s3://" + l.Bucket
	}
	return "s3://" + l.Bucket + "/" + l.Key
}

// ParseS3URI splits an s3://bucket/key URI.
func ParseS3URI(uri string) (Location, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %s: %v", ErrInvalidURI, uri, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return Location{}, fmt.Errorf("%w: %s", ErrInvalidURI, uri)
	}
	return Location{Bucket: u.Host, Key: strings.TrimPrefix(u.Path, "/")}, nil
}

// Store wraps S3 access for review outputs.
type Store struct {
	api S3API
}

// NewStore creates a Store.
func NewStore(api S3API) *Store {
	return &Store{api: api}
}

// CheckBucket verifies the bucket behind uri exists and is reachable.
func (s *Store) CheckBucket(ctx context.Context, uri string) error {
	loc, err := ParseS3URI(uri)
	if err != nil {
		return err
	}
	_, err = s.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(loc.Bucket)})
	if err == nil {
		return nil
	}

	// HeadBucket has no body, so only the status-derived code is available.
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket":
			return fmt.Errorf("output bucket %s: %w: %w", loc.Bucket, ErrBucketNotFound, err)
		case "Forbidden", "AccessDenied":
			return fmt.Errorf("output bucket %s: %w: %w", loc.Bucket, ErrBucketForbidden, err)
		}
	}
	return fmt.Errorf("output bucket %s is not accessible: %w", loc.Bucket, err)
}

// LoopOutput is the document a completed human loop writes.
type LoopOutput struct {
	FlowDefinitionARN string         `json:"flowDefinitionArn" yaml:"flow_definition_arn"`
	HumanLoopName     string         `json:"humanLoopName" yaml:"human_loop_name"`
	InputContent      map[string]any `json:"inputContent" yaml:"input_content"`
	HumanAnswers      []HumanAnswer  `json:"humanAnswers" yaml:"human_answers"`
}

// HumanAnswer is one reviewer's submission.
type HumanAnswer struct {
	AnswerContent    map[string]any `json:"answerContent" yaml:"answer_content"`
	SubmissionTime   string         `json:"submissionTime" yaml:"submission_time"`
	TimeSpentSeconds float64        `json:"timeSpentInSeconds" yaml:"time_spent_seconds"`
	WorkerID         string         `json:"workerId" yaml:"worker_id"`
	AcceptanceTime   string         `json:"acceptanceTime,omitempty" yaml:"acceptance_time,omitempty"`
}

// FetchLoopOutput downloads and decodes a human loop's output document.
func (s *Store) FetchLoopOutput(ctx context.Context, uri string) (*LoopOutput, error) {
	loc, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	if loc.Key == "" {
		return nil, fmt.Errorf("%w: %s has no object key", ErrInvalidURI, uri)
	}

	obj, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", loc, err)
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", loc, err)
	}

	var out LoopOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", loc, err)
	}
	return &out, nil
}
