// Package awsboot builds the AWS clients for a run and resolves
// configuration values kept in SSM Parameter Store.
//
// Clients are created once and passed explicitly to the stages that use
// them; nothing here is stored in package state.
package awsboot

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/fpang/selection-upload/internal/config"
)

// Clients holds the AWS SDK clients used by a run.
type Clients struct {
	Config      aws.Config
	S3          *s3.Client
	DynamoDB    *dynamodb.Client
	SSM         *ssm.Client
	EventBridge *eventbridge.Client
}

// LoadAWSConfig loads the default credential chain, overridden by an
// explicit region, profile or static key pair when configured.
func LoadAWSConfig(ctx context.Context, c config.AWSConfig) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, awsconfig.WithRegion(c.Region))
	}
	if c.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(c.Profile))
	}
	if c.HasStaticCredentials() {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, c.SessionToken),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	log.Debug().
		Str("region", cfg.Region).
		Bool("staticCredentials", c.HasStaticCredentials()).
		Str("profile", c.Profile).
		Msg("AWS config loaded")
	return cfg, nil
}

// NewClients creates every client from one aws.Config.
func NewClients(cfg aws.Config) *Clients {
	return &Clients{
		Config:      cfg,
		S3:          s3.NewFromConfig(cfg),
		DynamoDB:    dynamodb.NewFromConfig(cfg),
		SSM:         ssm.NewFromConfig(cfg),
		EventBridge: eventbridge.NewFromConfig(cfg),
	}
}

// GetParameterAPI is the subset of *ssm.Client used here.
type GetParameterAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// LoadParam reads one parameter, decrypting SecureString values.
func LoadParam(ctx context.Context, client GetParameterAPI, name string) (string, error) {
	start := time.Now()
	result, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("get parameter %s: %w", name, err)
	}
	if result.Parameter == nil || aws.ToString(result.Parameter.Value) == "" {
		return "", fmt.Errorf("parameter %s is empty", name)
	}
	log.Debug().Str("param", name).Dur("elapsed", time.Since(start)).Msg("Parameter loaded from SSM")
	return aws.ToString(result.Parameter.Value), nil
}

// ResolveParams fills the bucket name and Supabase key from Parameter Store
// when they are unset and a parameter path is configured. Values already
// present are never overwritten.
func ResolveParams(ctx context.Context, client GetParameterAPI, cfg *config.Config) error {
	if cfg.Storage.Bucket == "" && cfg.Storage.SSMBucketParam != "" {
		v, err := LoadParam(ctx, client, cfg.Storage.SSMBucketParam)
		if err != nil {
			return err
		}
		cfg.Storage.Bucket = v
	}
	if cfg.Storage.Backend == config.BackendSupabase && cfg.Supabase.Key == "" && cfg.Supabase.SSMKeyParam != "" {
		v, err := LoadParam(ctx, client, cfg.Supabase.SSMKeyParam)
		if err != nil {
			return err
		}
		cfg.Supabase.Key = v
	}
	return nil
}

// NeedsParams reports whether ResolveParams would make any SSM call.
func NeedsParams(cfg *config.Config) bool {
	return (cfg.Storage.Bucket == "" && cfg.Storage.SSMBucketParam != "") ||
		(cfg.Storage.Backend == config.BackendSupabase && cfg.Supabase.Key == "" && cfg.Supabase.SSMKeyParam != "")
}
