package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/fpang/selection-upload/internal/cli"
	"github.com/fpang/selection-upload/internal/config"
)

func TestApplyFlagsOnlyOverridesChangedFlags(t *testing.T) {
	cfg := &config.Config{}
	cfg.Run.Username = "from-env"
	cfg.Run.EventID = "ev-env"
	cfg.Run.Concurrency = 10

	if err := rootCmd.Flags().Set("event-id", "ev-flag"); err != nil {
		t.Fatal(err)
	}
	if err := rootCmd.Flags().Set("url-retries", "2"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		rootCmd.Flags().Lookup("event-id").Changed = false
		rootCmd.Flags().Lookup("url-retries").Changed = false
		eventIDFlag = ""
		urlRetriesFlag = 0
	})

	applyFlags(rootCmd, cfg)

	if cfg.Run.EventID != "ev-flag" {
		t.Errorf("EventID = %q, want ev-flag", cfg.Run.EventID)
	}
	if cfg.Run.Username != "from-env" {
		t.Errorf("Username = %q, want from-env", cfg.Run.Username)
	}
	if cfg.Run.Concurrency != 10 {
		t.Errorf("Concurrency = %d, want 10", cfg.Run.Concurrency)
	}
	if cfg.Run.URLRetries != 2 {
		t.Errorf("URLRetries = %d, want 2", cfg.Run.URLRetries)
	}
}

func TestBuildDepsDryRun(t *testing.T) {
	cfg := &config.Config{}
	cfg.Run.DryRun = true

	deps, err := buildDeps(cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deps.Objects != nil || deps.Records != nil {
		t.Error("dry run must not build storage or record clients")
	}
}

// countingAWS serves every AWS request with a 400 and counts them.
func countingAWS(t *testing.T) *atomic.Int32 {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/x-amz-json-1.1")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"__type":"ParameterNotFound","message":"not found"}`))
	}))
	t.Cleanup(srv.Close)

	t.Setenv("AWS_ENDPOINT_URL", srv.URL)
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "credentials"))
	t.Setenv(config.EnvRegion, "us-east-1")
	t.Setenv(config.EnvAccessKeyID, "AKIDEXAMPLE")
	t.Setenv(config.EnvSecretAccessKey, "secret")
	t.Setenv(config.EnvSSMBucketParam, "/selection/bucket")
	return &calls
}

func TestExecuteChecksDirectoryBeforeAWS(t *testing.T) {
	tests := []struct {
		name      string
		directory string
		wantCalls bool
	}{
		{"missing directory", filepath.Join(t.TempDir(), "missing"), false},
		{"existing directory", t.TempDir(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := countingAWS(t)
			t.Setenv(config.EnvDirectory, tt.directory)

			exitCode = cli.ExitOK
			rootCmd.SetArgs([]string{"--no-prompt", "--env-file", filepath.Join(t.TempDir(), "none.env")})
			t.Cleanup(func() {
				rootCmd.SetArgs(nil)
				rootCmd.Flags().Lookup("no-prompt").Changed = false
				noPromptFlag = false
				envFileFlag = ".env"
				exitCode = cli.ExitOK
			})

			if got := execute(); got != cli.ExitConfiguration {
				t.Errorf("execute() = %d, want %d", got, cli.ExitConfiguration)
			}
			if got := calls.Load() > 0; got != tt.wantCalls {
				t.Errorf("AWS requests = %d, want any: %v", calls.Load(), tt.wantCalls)
			}
		})
	}
}
