package function

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/google/go-cmp/cmp"
)

// fakeLambda simulates a function configuration store with revisions.
type fakeLambda struct {
	vars     map[string]string
	revision int
	statuses []types.LastUpdateStatus

	getErr    error
	updateErr error
	envErr    *types.EnvironmentError

	// bumpBeforeUpdate simulates another writer changing the function
	// between our read and our write.
	bumpBeforeUpdate bool

	gets    int
	updates int
	lastIn  *lambda.UpdateFunctionConfigurationInput
}

func newFakeLambda(vars map[string]string) *fakeLambda {
	return &fakeLambda{vars: vars, revision: 1}
}

func (f *fakeLambda) revisionID() *string {
	return aws.String("rev-" + strconv.Itoa(f.revision))
}

func (f *fakeLambda) GetFunctionConfiguration(_ context.Context, in *lambda.GetFunctionConfigurationInput, _ ...func(*lambda.Options)) (*lambda.GetFunctionConfigurationOutput, error) {
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	out := &lambda.GetFunctionConfigurationOutput{
		FunctionName: in.FunctionName,
		RevisionId:   f.revisionID(),
	}
	if f.vars != nil || f.envErr != nil {
		copied := make(map[string]string, len(f.vars))
		for k, v := range f.vars {
			copied[k] = v
		}
		out.Environment = &types.EnvironmentResponse{Variables: copied, Error: f.envErr}
	}
	if len(f.statuses) > 0 {
		out.LastUpdateStatus = f.statuses[0]
		f.statuses = f.statuses[1:]
		if out.LastUpdateStatus == types.LastUpdateStatusFailed {
			out.LastUpdateStatusReason = aws.String("bad layer")
		}
	}
	return out, nil
}

func (f *fakeLambda) UpdateFunctionConfiguration(_ context.Context, in *lambda.UpdateFunctionConfigurationInput, _ ...func(*lambda.Options)) (*lambda.UpdateFunctionConfigurationOutput, error) {
	f.updates++
	f.lastIn = in
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.bumpBeforeUpdate {
		f.revision++
	}
	if in.RevisionId != nil && aws.ToString(in.RevisionId) != aws.ToString(f.revisionID()) {
		return nil, &types.PreconditionFailedException{Message: aws.String("revision mismatch")}
	}
	f.vars = in.Environment.Variables
	f.revision++
	return &lambda.UpdateFunctionConfigurationOutput{
		FunctionName: in.FunctionName,
		FunctionArn:  aws.String("arn:aws:lambda:us-east-1:123456789012:function:" + aws.ToString(in.FunctionName)),
		RevisionId:   f.revisionID(),
	}, nil
}

func TestPatcher_Patch(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrites existing key and keeps others", func(t *testing.T) {
		fake := newFakeLambda(map[string]string{"A": "1", "B": "2"})
		p := NewPatcher(fake)

		result, err := p.Patch(ctx, "pipeline-fn", "B", "3")
		if err != nil {
			t.Fatalf("Patch failed: %v", err)
		}

		if diff := cmp.Diff(map[string]string{"A": "1", "B": "3"}, fake.vars); diff != "" {
			t.Errorf("environment mismatch (-want +got):\n%s", diff)
		}
		if result.PreviousValue != "2" || result.Added || !result.Changed {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("adds missing key", func(t *testing.T) {
		fake := newFakeLambda(map[string]string{"A": "1", "B": "2"})
		p := NewPatcher(fake)

		result, err := p.Patch(ctx, "pipeline-fn", "C", "x")
		if err != nil {
			t.Fatalf("Patch failed: %v", err)
		}

		if diff := cmp.Diff(map[string]string{"A": "1", "B": "2", "C": "x"}, fake.vars); diff != "" {
			t.Errorf("environment mismatch (-want +got):\n%s", diff)
		}
		if !result.Added {
			t.Error("expected Added for a new key")
		}
	})

	t.Run("function without environment", func(t *testing.T) {
		fake := newFakeLambda(nil)
		p := NewPatcher(fake)

		if _, err := p.Patch(ctx, "pipeline-fn", "K", "v"); err != nil {
			t.Fatalf("Patch failed: %v", err)
		}
		if diff := cmp.Diff(map[string]string{"K": "v"}, fake.vars); diff != "" {
			t.Errorf("environment mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("same value still writes once", func(t *testing.T) {
		fake := newFakeLambda(map[string]string{"A": "1"})
		p := NewPatcher(fake)

		result, err := p.Patch(ctx, "pipeline-fn", "A", "1")
		if err != nil {
			t.Fatalf("Patch failed: %v", err)
		}
		if result.Changed {
			t.Error("expected Changed=false for identical value")
		}
		if fake.gets != 1 || fake.updates != 1 {
			t.Errorf("expected 1 get and 1 update, got %d and %d", fake.gets, fake.updates)
		}
	})

	t.Run("exactly one fetch and one write", func(t *testing.T) {
		fake := newFakeLambda(map[string]string{"A": "1"})
		p := NewPatcher(fake)

		if _, err := p.Patch(ctx, "pipeline-fn", "A", "2"); err != nil {
			t.Fatalf("Patch failed: %v", err)
		}
		if fake.gets != 1 {
			t.Errorf("expected 1 get, got %d", fake.gets)
		}
		if fake.updates != 1 {
			t.Errorf("expected 1 update, got %d", fake.updates)
		}
	})

	t.Run("write is conditional on fetched revision", func(t *testing.T) {
		fake := newFakeLambda(map[string]string{"A": "1"})
		p := NewPatcher(fake)

		if _, err := p.Patch(ctx, "pipeline-fn", "A", "2"); err != nil {
			t.Fatalf("Patch failed: %v", err)
		}
		if got := aws.ToString(fake.lastIn.RevisionId); got != "rev-1" {
			t.Errorf("expected revision rev-1 on update, got %q", got)
		}
	})

	t.Run("fetch failure skips update and propagates", func(t *testing.T) {
		fetchErr := &types.ResourceNotFoundException{Message: aws.String("no such function")}
		fake := newFakeLambda(map[string]string{"A": "1"})
		fake.getErr = fetchErr
		p := NewPatcher(fake)

		_, err := p.Patch(ctx, "missing-fn", "A", "2")
		if err == nil {
			t.Fatal("expected error")
		}
		var notFound *types.ResourceNotFoundException
		if !errors.As(err, &notFound) {
			t.Errorf("expected ResourceNotFoundException in chain, got %v", err)
		}
		if fake.updates != 0 {
			t.Errorf("expected no update after failed fetch, got %d", fake.updates)
		}
	})

	t.Run("update failure propagates", func(t *testing.T) {
		updateErr := errors.New("throttled")
		fake := newFakeLambda(map[string]string{"A": "1"})
		fake.updateErr = updateErr
		p := NewPatcher(fake)

		_, err := p.Patch(ctx, "pipeline-fn", "A", "2")
		if !errors.Is(err, updateErr) {
			t.Errorf("expected update error in chain, got %v", err)
		}
		if fake.updates != 1 {
			t.Errorf("expected exactly 1 update attempt, got %d", fake.updates)
		}
	})

	t.Run("concurrent change is reported without retry", func(t *testing.T) {
		fake := newFakeLambda(map[string]string{"A": "1"})
		fake.bumpBeforeUpdate = true
		p := NewPatcher(fake)

		_, err := p.Patch(ctx, "pipeline-fn", "A", "2")
		if !errors.Is(err, ErrConcurrentModification) {
			t.Fatalf("expected ErrConcurrentModification, got %v", err)
		}
		if fake.gets != 1 || fake.updates != 1 {
			t.Errorf("expected 1 get and 1 update, got %d and %d", fake.gets, fake.updates)
		}
		if fake.vars["A"] != "1" {
			t.Errorf("rejected write must not change the environment, got A=%q", fake.vars["A"])
		}
	})

	t.Run("unreadable environment is not overwritten", func(t *testing.T) {
		fake := newFakeLambda(map[string]string{})
		fake.envErr = &types.EnvironmentError{ErrorCode: aws.String("KMSAccessDenied"), Message: aws.String("denied")}
		p := NewPatcher(fake)

		_, err := p.Patch(ctx, "pipeline-fn", "A", "2")
		if !errors.Is(err, ErrEnvironmentUnreadable) {
			t.Fatalf("expected ErrEnvironmentUnreadable, got %v", err)
		}
		if fake.updates != 0 {
			t.Errorf("expected no update, got %d", fake.updates)
		}
	})
}

func TestPatcher_Environment(t *testing.T) {
	fake := newFakeLambda(map[string]string{"A": "1"})
	p := NewPatcher(fake)

	vars, err := p.Environment(context.Background(), "pipeline-fn")
	if err != nil {
		t.Fatalf("Environment failed: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"A": "1"}, vars); diff != "" {
		t.Errorf("environment mismatch (-want +got):\n%s", diff)
	}
}

func TestPatcher_WaitUpdated(t *testing.T) {
	ctx := context.Background()

	t.Run("returns once successful", func(t *testing.T) {
		fake := newFakeLambda(nil)
		fake.statuses = []types.LastUpdateStatus{
			types.LastUpdateStatusInProgress,
			types.LastUpdateStatusInProgress,
			types.LastUpdateStatusSuccessful,
		}
		p := NewPatcher(fake, WithPollInterval(time.Millisecond))

		if err := p.WaitUpdated(ctx, "pipeline-fn", time.Second); err != nil {
			t.Fatalf("WaitUpdated failed: %v", err)
		}
		if fake.gets != 3 {
			t.Errorf("expected 3 polls, got %d", fake.gets)
		}
	})

	t.Run("stops on failed update", func(t *testing.T) {
		fake := newFakeLambda(nil)
		fake.statuses = []types.LastUpdateStatus{
			types.LastUpdateStatusInProgress,
			types.LastUpdateStatusFailed,
			types.LastUpdateStatusSuccessful,
		}
		p := NewPatcher(fake, WithPollInterval(time.Millisecond))

		err := p.WaitUpdated(ctx, "pipeline-fn", time.Second)
		if !errors.Is(err, ErrUpdateFailed) {
			t.Fatalf("expected ErrUpdateFailed, got %v", err)
		}
		if fake.gets != 2 {
			t.Errorf("expected polling to stop after failure, got %d polls", fake.gets)
		}
	})

	t.Run("times out while in progress", func(t *testing.T) {
		fake := newFakeLambda(nil)
		for i := 0; i < 100; i++ {
			fake.statuses = append(fake.statuses, types.LastUpdateStatusInProgress)
		}
		p := NewPatcher(fake, WithPollInterval(time.Millisecond))

		if err := p.WaitUpdated(ctx, "pipeline-fn", 5*time.Millisecond); err == nil {
			t.Fatal("expected timeout error")
		}
	})

	t.Run("non-positive timeout polls once", func(t *testing.T) {
		for _, timeout := range []time.Duration{0, -10 * time.Millisecond, -time.Hour} {
			fake := newFakeLambda(nil)
			for i := 0; i < 100; i++ {
				fake.statuses = append(fake.statuses, types.LastUpdateStatusInProgress)
			}
			p := NewPatcher(fake, WithPollInterval(time.Millisecond))

			if err := p.WaitUpdated(ctx, "pipeline-fn", timeout); err == nil {
				t.Errorf("timeout %s: expected error while in progress", timeout)
			}
			if fake.gets != 1 {
				t.Errorf("timeout %s: expected 1 poll, got %d", timeout, fake.gets)
			}
		}
	})
}
