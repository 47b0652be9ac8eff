package logging

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RunLogger collects a run's resolved configuration and emits it as one
// structured event, so a log file always says where a run wrote to.
// Secrets must never be registered.
type RunLogger struct {
	name    string
	version string

	buckets  map[string]string
	tables   map[string]string
	params   map[string]string
	features map[string]bool
	config   map[string]string
	resolve  time.Duration
}

// NewRunLogger creates a RunLogger for the named command.
func NewRunLogger(name string) *RunLogger {
	return &RunLogger{
		name:     name,
		buckets:  make(map[string]string),
		tables:   make(map[string]string),
		params:   make(map[string]string),
		features: make(map[string]bool),
		config:   make(map[string]string),
	}
}

// Version sets the build version.
func (s *RunLogger) Version(v string) *RunLogger {
	s.version = v
	return s
}

// Bucket registers the object storage location.
func (s *RunLogger) Bucket(label, name string) *RunLogger {
	s.buckets[label] = name
	return s
}

// Table registers a record store table.
func (s *RunLogger) Table(label, name string) *RunLogger {
	s.tables[label] = name
	return s
}

// SSMParam registers a Parameter Store path. Only the path is logged.
func (s *RunLogger) SSMParam(label, path string) *RunLogger {
	if path != "" {
		s.params[label] = path
	}
	return s
}

// Feature registers a boolean option such as dryRun or emf.
func (s *RunLogger) Feature(name string, enabled bool) *RunLogger {
	s.features[name] = enabled
	return s
}

// Config registers a non-sensitive configuration value.
func (s *RunLogger) Config(key, value string) *RunLogger {
	s.config[key] = value
	return s
}

// ResolveDuration records how long configuration resolution took.
func (s *RunLogger) ResolveDuration(d time.Duration) *RunLogger {
	s.resolve = d
	return s
}

// Log emits the collected information as a single INFO event.
func (s *RunLogger) Log() {
	evt := log.Info()

	build := zerolog.Dict().
		Str("name", s.name).
		Str("goVersion", runtime.Version()).
		Str("os", runtime.GOOS).
		Str("arch", runtime.GOARCH).
		Str("logLevel", zerolog.GlobalLevel().String())
	if s.version != "" {
		build = build.Str("version", s.version)
	}
	evt = evt.Dict("build", build)

	resources := zerolog.Dict()
	hasResources := false
	if len(s.buckets) > 0 {
		resources = resources.Dict("buckets", dictFromMap(s.buckets))
		hasResources = true
	}
	if len(s.tables) > 0 {
		resources = resources.Dict("tables", dictFromMap(s.tables))
		hasResources = true
	}
	if len(s.params) > 0 {
		resources = resources.Dict("ssmParams", dictFromMap(s.params))
		hasResources = true
	}
	if hasResources {
		evt = evt.Dict("resources", resources)
	}

	if len(s.features) > 0 {
		d := zerolog.Dict()
		for k, v := range s.features {
			d = d.Bool(k, v)
		}
		evt = evt.Dict("features", d)
	}

	if len(s.config) > 0 {
		evt = evt.Dict("config", dictFromMap(s.config))
	}

	if s.resolve > 0 {
		evt = evt.Dur("resolveDuration", s.resolve)
	}

	evt.Msg("Selection upload configured")
}

func dictFromMap(m map[string]string) *zerolog.Event {
	d := zerolog.Dict()
	for k, v := range m {
		d = d.Str(k, v)
	}
	return d
}
