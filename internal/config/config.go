// Package config resolves the configuration bundle of a selection run from
// SELECTION_* environment variables. Command-line flags and interactive
// prompts fill in on top; Validate is the last step before a run starts.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "SELECTION"

// Environment variable names.
const (
	EnvDirectory       = "SELECTION_DIRECTORY"
	EnvUsername        = "SELECTION_USERNAME"
	EnvEventID         = "SELECTION_EVENT_ID"
	EnvEventTitle      = "SELECTION_EVENT_TITLE"
	EnvMaxPhotos       = "SELECTION_MAX_PHOTOS"
	EnvConcurrency     = "SELECTION_CONCURRENCY"
	EnvBackend         = "SELECTION_STORAGE_BACKEND"
	EnvBucket          = "SELECTION_BUCKET"
	EnvSSMBucketParam  = "SELECTION_SSM_BUCKET_PARAM"
	EnvSupabaseURL     = "SELECTION_SUPABASE_URL"
	EnvSupabaseKey     = "SELECTION_SUPABASE_KEY"
	EnvSSMSupabaseKey  = "SELECTION_SSM_SUPABASE_KEY_PARAM"
	EnvRegion          = "SELECTION_AWS_REGION"
	EnvAccessKeyID     = "SELECTION_AWS_ACCESS_KEY_ID"
	EnvSecretAccessKey = "SELECTION_AWS_SECRET_ACCESS_KEY"
	EnvTableSelection  = "SELECTION_TABLE_SELECTION"
	EnvTableItems      = "SELECTION_TABLE_SELECTION_ITEM"
	EnvTableEvents     = "SELECTION_TABLE_EVENTS"
	EnvEventBus        = "SELECTION_EVENT_BUS"
	EnvLogLevel        = "SELECTION_LOG_LEVEL"
	EnvLogFormat       = "SELECTION_LOG_FORMAT"
)

// Storage backends.
const (
	BackendS3       = "s3"
	BackendSupabase = "supabase"
)

type Config struct {
	App      AppConfig
	Run      RunConfig
	AWS      AWSConfig
	Storage  StorageConfig
	Supabase SupabaseConfig
	Tables   TablesConfig
	Events   EventsConfig
}

// Load reads the environment. It does not validate: required values may
// still come from flags or prompts.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	LogLevel  string `envconfig:"SELECTION_LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"SELECTION_LOG_FORMAT" default:"console" validate:"oneof=console json"`
	Output    string `envconfig:"SELECTION_OUTPUT" default:"text" validate:"oneof=text json"`
	Report    string `envconfig:"SELECTION_REPORT"`
	EMF       bool   `envconfig:"SELECTION_EMF" default:"false"`
}

type RunConfig struct {
	Directory         string        `envconfig:"SELECTION_DIRECTORY" validate:"required"`
	Username          string        `envconfig:"SELECTION_USERNAME" validate:"required,excludesall=/"`
	EventID           string        `envconfig:"SELECTION_EVENT_ID" validate:"required,excludesall=/"`
	EventTitle        string        `envconfig:"SELECTION_EVENT_TITLE" validate:"required"`
	MaxNumberOfPhotos int           `envconfig:"SELECTION_MAX_PHOTOS" validate:"min=1"`
	Concurrency       int           `envconfig:"SELECTION_CONCURRENCY" default:"10"`
	URLRetries        int           `envconfig:"SELECTION_URL_RETRIES" default:"0" validate:"min=0,max=10"`
	URLBackoff        time.Duration `envconfig:"SELECTION_URL_BACKOFF" default:"500ms"`
	DryRun            bool          `envconfig:"SELECTION_DRY_RUN" default:"false"`
}

type AWSConfig struct {
	Region          string `envconfig:"SELECTION_AWS_REGION"`
	Profile         string `envconfig:"SELECTION_AWS_PROFILE"`
	AccessKeyID     string `envconfig:"SELECTION_AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"SELECTION_AWS_SECRET_ACCESS_KEY" validate:"required_with=AccessKeyID"`
	SessionToken    string `envconfig:"SELECTION_AWS_SESSION_TOKEN"`
}

// HasStaticCredentials reports whether an explicit key pair was supplied.
func (a AWSConfig) HasStaticCredentials() bool {
	return a.AccessKeyID != "" && a.SecretAccessKey != ""
}

type StorageConfig struct {
	Backend        string `envconfig:"SELECTION_STORAGE_BACKEND" default:"s3" validate:"oneof=s3 supabase"`
	Bucket         string `envconfig:"SELECTION_BUCKET" validate:"required"`
	SSMBucketParam string `envconfig:"SELECTION_SSM_BUCKET_PARAM"`
}

type SupabaseConfig struct {
	URL         string `envconfig:"SELECTION_SUPABASE_URL"`
	Key         string `envconfig:"SELECTION_SUPABASE_KEY"`
	SSMKeyParam string `envconfig:"SELECTION_SSM_SUPABASE_KEY_PARAM"`
}

type TablesConfig struct {
	Selection     string `envconfig:"SELECTION_TABLE_SELECTION" default:"Selection" validate:"required"`
	SelectionItem string `envconfig:"SELECTION_TABLE_SELECTION_ITEM" default:"SelectionItem" validate:"required"`
	Events        string `envconfig:"SELECTION_TABLE_EVENTS" default:"Events" validate:"required"`
}

type EventsConfig struct {
	Bus     string `envconfig:"SELECTION_EVENT_BUS"`
	Disable bool   `envconfig:"SELECTION_EVENTS_DISABLED" default:"false"`
}

// Enabled reports whether SelectionAvailable events should be published.
func (e EventsConfig) Enabled() bool {
	return e.Bus != "" && !e.Disable
}

// UsesAWS reports whether any AWS client is needed. Records always live in
// DynamoDB, so only a dry run avoids AWS entirely.
func (c *Config) UsesAWS() bool {
	return !c.Run.DryRun
}
