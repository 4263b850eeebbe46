package outputs

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/go-cmp/cmp"
)

type fakeS3 struct {
	headErr error
	headIn  *s3.HeadBucketInput
	objects map[string]string
	getIn   *s3.GetObjectInput
}

func (f *fakeS3) HeadBucket(_ context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	f.headIn = in
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.getIn = in
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		uri     string
		want    Location
		wantErr bool
	}{
		{"s3://bucket", Location{Bucket: "bucket"}, false},
		{"s3://bucket/", Location{Bucket: "bucket"}, false},
		{"s3://bucket/a/b/output.json", Location{Bucket: "bucket", Key: "a/b/output.json"}, false},
		{"https://bucket/key", Location{}, true},
		{"s3:///key", Location{}, true},
		{"bucket/key", Location{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := ParseS3URI(tt.uri)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidURI) {
					t.Errorf("expected ErrInvalidURI, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLocation_String(t *testing.T) {
	if got := (Location{Bucket: "b"}).String(); got != "s3://b" {
		t.Errorf("unexpected %q", got)
	}
	if got := (Location{Bucket: "b", Key: "k/x"}).String(); got != "s3://b/k/x" {
		t.Errorf("unexpected %q", got)
	}
}

func TestStore_CheckBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		api := &fakeS3{}
		if err := NewStore(api).CheckBucket(ctx, "s3://review-out/a2i"); err != nil {
			t.Fatalf("CheckBucket failed: %v", err)
		}
		if aws.ToString(api.headIn.Bucket) != "review-out" {
			t.Errorf("unexpected bucket %q", aws.ToString(api.headIn.Bucket))
		}
	})

	t.Run("inaccessible", func(t *testing.T) {
		headErr := errors.New("forbidden")
		err := NewStore(&fakeS3{headErr: headErr}).CheckBucket(ctx, "s3://review-out")
		if !errors.Is(err, headErr) {
			t.Errorf("expected wrapped error, got %v", err)
		}
	})

	t.Run("missing bucket", func(t *testing.T) {
		err := NewStore(&fakeS3{headErr: &types.NotFound{}}).CheckBucket(ctx, "s3://review-out")
		if !errors.Is(err, ErrBucketNotFound) {
			t.Errorf("expected ErrBucketNotFound, got %v", err)
		}
		var notFound *types.NotFound
		if !errors.As(err, &notFound) {
			t.Error("original error should still be reachable")
		}
	})

	t.Run("access denied", func(t *testing.T) {
		headErr := &smithy.GenericAPIError{Code: "Forbidden", Message: "Forbidden"}
		err := NewStore(&fakeS3{headErr: headErr}).CheckBucket(ctx, "s3://review-out")
		if !errors.Is(err, ErrBucketForbidden) {
			t.Errorf("expected ErrBucketForbidden, got %v", err)
		}
	})

	t.Run("bad uri", func(t *testing.T) {
		api := &fakeS3{}
		if err := NewStore(api).CheckBucket(ctx, "review-out"); !errors.Is(err, ErrInvalidURI) {
			t.Errorf("expected ErrInvalidURI, got %v", err)
		}
		if api.headIn != nil {
			t.Error("HeadBucket should not be called for a bad uri")
		}
	})
}

func TestStore_FetchLoopOutput(t *testing.T) {
	doc := `{
		"flowDefinitionArn": "arn:flow",
		"humanLoopName": "smoke-test",
		"inputContent": {"taskObject": "s3://b/doc.png"},
		"humanAnswers": [{
			"answerContent": {"total": "10.00"},
			"submissionTime": "2024-03-18T10:00:00.000Z",
			"timeSpentInSeconds": 12.5,
			"workerId": "w-1"
		}]
	}`
	api := &fakeS3{objects: map[string]string{"out/a2i/output.json": doc}}
	store := NewStore(api)

	got, err := store.FetchLoopOutput(context.Background(), "s3://out/a2i/output.json")
	if err != nil {
		t.Fatalf("FetchLoopOutput failed: %v", err)
	}
	want := &LoopOutput{
		FlowDefinitionARN: "arn:flow",
		HumanLoopName:     "smoke-test",
		InputContent:      map[string]any{"taskObject": "s3://b/doc.png"},
		HumanAnswers: []HumanAnswer{{
			AnswerContent:    map[string]any{"total": "10.00"},
			SubmissionTime:   "2024-03-18T10:00:00.000Z",
			TimeSpentSeconds: 12.5,
			WorkerID:         "w-1",
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}

	if _, err := store.FetchLoopOutput(context.Background(), "s3://out"); !errors.Is(err, ErrInvalidURI) {
		t.Errorf("expected ErrInvalidURI for bucket-only uri, got %v", err)
	}
	if _, err := store.FetchLoopOutput(context.Background(), "s3://out/missing.json"); err == nil {
		t.Error("expected error for missing object")
	}
}
