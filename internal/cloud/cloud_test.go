package cloud

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jackzampolin/loopctl/internal/config"
)

// isolate keeps the developer's own AWS setup out of the test.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
}

func TestLoad(t *testing.T) {
	isolate(t)
	ctx := context.Background()

	t.Run("explicit region", func(t *testing.T) {
		clients, err := Load(ctx, config.AWSCfg{Region: "eu-west-1"})
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if clients.Region() != "eu-west-1" {
			t.Errorf("expected eu-west-1, got %s", clients.Region())
		}
		if clients.SageMaker == nil || clients.Runtime == nil || clients.Lambda == nil || clients.S3 == nil {
			t.Error("expected all clients to be created")
		}
	})

	t.Run("missing region", func(t *testing.T) {
		if _, err := Load(ctx, config.AWSCfg{}); err == nil {
			t.Error("expected error without a region")
		}
	})

	t.Run("unknown profile", func(t *testing.T) {
		if _, err := Load(ctx, config.AWSCfg{Region: "us-east-1", Profile: "does-not-exist"}); err == nil {
			t.Error("expected error for unknown profile")
		}
	})
}
