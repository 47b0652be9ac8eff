package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"

	"github.com/fpang/selection-upload/internal/ingest"
)

var validate = newValidator()

// newValidator reports fields by their environment variable name, which is
// what a user has to set to fix them.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if tag := f.Tag.Get("envconfig"); tag != "" {
			return tag
		}
		return f.Name
	})
	return v
}

// Validate checks the fully resolved bundle. Every problem is returned,
// each as an *ingest.ConfigurationError, combined with multierr.
func (c *Config) Validate() error {
	var errs error

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return &ingest.ConfigurationError{Err: err}
		}
		for _, fe := range verrs {
			if c.Run.DryRun && dryRunOptional(fe) {
				continue
			}
			errs = multierr.Append(errs, &ingest.ConfigurationError{
				Field: fe.Field(),
				Err:   errors.New(validationMessage(fe)),
			})
		}
	}

	if c.Storage.Backend == BackendSupabase && !c.Run.DryRun {
		if c.Supabase.URL == "" {
			errs = multierr.Append(errs, &ingest.ConfigurationError{Field: EnvSupabaseURL, Err: errors.New("is required for the supabase backend")})
		}
		if c.Supabase.Key == "" {
			errs = multierr.Append(errs, &ingest.ConfigurationError{Field: EnvSupabaseKey, Err: errors.New("is required for the supabase backend")})
		}
	}

	return errs
}

// dryRunOptional lists checks that only matter when publishing.
func dryRunOptional(fe validator.FieldError) bool {
	return fe.Field() == EnvBucket
}

// Missing returns the environment names of required run values that are
// still empty, in prompt order. A bucket backed by an SSM parameter is
// resolved later and is not reported.
func (c *Config) Missing() []string {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	check(EnvDirectory, c.Run.Directory)
	check(EnvUsername, c.Run.Username)
	check(EnvEventID, c.Run.EventID)
	check(EnvEventTitle, c.Run.EventTitle)
	if c.Run.MaxNumberOfPhotos <= 0 {
		missing = append(missing, EnvMaxPhotos)
	}
	if !c.Run.DryRun && c.Storage.SSMBucketParam == "" {
		check(EnvBucket, c.Storage.Bucket)
	}
	return missing
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_with":
		return fmt.Sprintf("is required when %s is set", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "excludesall":
		return fmt.Sprintf("must not contain %q", fe.Param())
	}
	return "is invalid"
}
