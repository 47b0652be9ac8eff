package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"", zerolog.InfoLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"verbose", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRunLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	InitTo(&buf, "info", FormatJSON)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	NewRunLogger("selection-upload").
		Version("v1.2.3").
		Bucket("media", "s3://photos").
		Table("selection", "Selection").
		SSMParam("bucket", "/selection/bucket").
		SSMParam("unused", "").
		Feature("dryRun", false).
		Config("concurrency", "10").
		Log()

	var evt map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &evt); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, buf.String())
	}
	if evt["message"] != "Selection upload configured" {
		t.Errorf("message = %v", evt["message"])
	}
	resources := evt["resources"].(map[string]interface{})
	params := resources["ssmParams"].(map[string]interface{})
	if _, ok := params["unused"]; ok {
		t.Error("empty SSM parameter paths should not be logged")
	}
	build := evt["build"].(map[string]interface{})
	if build["version"] != "v1.2.3" {
		t.Errorf("build = %v", build)
	}
}
