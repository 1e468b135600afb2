package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

func TestTextFormatter(t *testing.T) {
	formatter := &TextFormatter{}

	output, err := formatter.Format("test message")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if string(output) != "test message\n" {
		t.Errorf("Format() = %q", string(output))
	}

	buf := &bytes.Buffer{}
	if err := formatter.FormatTo(buf, "test message"); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if buf.String() != "test message\n" {
		t.Errorf("FormatTo() = %q", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	data := map[string]any{
		"elasticsearch": map[string]any{
			"client": map[string]any{"hosts": []any{"http://127.0.0.1:9200"}},
		},
	}

	for _, indent := range []bool{false, true} {
		formatter := &JSONFormatter{Indent: indent}
		output, err := formatter.Format(data)
		if err != nil {
			t.Fatalf("Format() error = %v", err)
		}
		var decoded map[string]any
		if err := json.Unmarshal(output, &decoded); err != nil {
			t.Errorf("Format() produced invalid JSON: %v", err)
		}
		if indent != strings.Contains(string(output), "\n") {
			t.Errorf("indent=%v output = %s", indent, output)
		}
	}
}

func TestYAMLFormatter(t *testing.T) {
	data := map[string]any{
		"elasticsearch": map[string]any{
			"client":         map[string]any{"hosts": []any{"http://127.0.0.1:9200"}},
			"other_settings": map[string]any{"password": "REDACTED"},
		},
	}

	output, err := NewFormatter(FormatYAML).Format(data)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := `elasticsearch:
  client:
    hosts:
      - http://127.0.0.1:9200
  other_settings:
    password: REDACTED
`
	if string(output) != want {
		t.Errorf("Format() =\n%s\nwant\n%s", output, want)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(output, &decoded); err != nil {
		t.Errorf("Format() produced invalid YAML: %v", err)
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   string
	}{
		{FormatJSON, "*cli.JSONFormatter"},
		{FormatText, "*cli.TextFormatter"},
		{FormatYAML, "*cli.YAMLFormatter"},
		{"unknown", "*cli.YAMLFormatter"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			got := typeName(NewFormatter(tt.format))
			if got != tt.want {
				t.Errorf("NewFormatter(%q) = %s, want %s", tt.format, got, tt.want)
			}
		})
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *JSONFormatter:
		return "*cli.JSONFormatter"
	case *TextFormatter:
		return "*cli.TextFormatter"
	case *YAMLFormatter:
		return "*cli.YAMLFormatter"
	}
	return "unknown"
}

func TestParseOutputFormat(t *testing.T) {
	for _, s := range []string{"yaml", "json", "text", ""} {
		if _, err := ParseOutputFormat(s); err != nil {
			t.Errorf("ParseOutputFormat(%q) error = %v", s, err)
		}
	}
	if _, err := ParseOutputFormat("csv"); err == nil {
		t.Error("ParseOutputFormat(csv) succeeded")
	}
}

func TestRenderOptions(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	RenderOptions(&buf, []OptionRow{
		{Flag: "--hosts", Env: "ESCLIENT_HOSTS", Usage: "Elasticsearch URL"},
		{Flag: "--master-only", Env: "ESCLIENT_MASTER_ONLY", Default: "false", Usage: "Only run on the elected master"},
	})

	out := buf.String()
	for _, want := range []string{"Flag", "Environment", "--hosts", "ESCLIENT_MASTER_ONLY", "Only run on the elected master"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestStatusLines(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	Success(&buf, "connected to %s", "es01")
	Failure(&buf, "version %s", "7.0.0")
	Warning(&buf, "skipped")

	want := "✓ connected to es01\n✗ version 7.0.0\n⚠ skipped\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}
