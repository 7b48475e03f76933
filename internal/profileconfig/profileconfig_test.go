package profileconfig

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
profiles:
  openai:
    base_url: "https://api.example.com"
    endpoints:
      chat: "/v1/chat/completions"
    headers:
      Authorization: "Bearer {api_key}"
      Content-Type: "application/json"
    request_body:
      model: "{model_name}"
      messages:
        - role: user
          content: "{prompt}"
test_configs:
  smoke:
    concurrent_levels: [1, 2, 4]
    requests_per_level: 10
    timeout: 30s
    ramp_up_time: 1s
    cool_down_time: 1s
`

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}
	return path
}

func TestLoadValidFile(t *testing.T) {
	path := writeFile(t, validYAML)
	result, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	profile, ok := result.Profiles["openai"]
	if !ok {
		t.Fatal("missing profile \"openai\"")
	}
	if profile.BaseURL != "https://api.example.com" {
		t.Errorf("BaseURL = %q", profile.BaseURL)
	}
	if len(profile.Headers) != 2 || profile.Headers[0].Name != "Authorization" {
		t.Errorf("unexpected header order: %+v", profile.Headers)
	}

	cfg, ok := result.Configs["smoke"]
	if !ok {
		t.Fatal("missing test config \"smoke\"")
	}
	if len(cfg.ConcurrentLevels) != 3 {
		t.Errorf("ConcurrentLevels = %v", cfg.ConcurrentLevels)
	}
}

func TestLoadAccumulatesValidationIssues(t *testing.T) {
	const badYAML = `
profiles:
  broken:
    endpoints: {}
test_configs:
  empty:
    concurrent_levels: []
    requests_per_level: 0
`
	path := writeFile(t, badYAML)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected a ValidationError")
	}
	verr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Issues()) < 3 {
		t.Errorf("expected at least 3 accumulated issues, got %v", verr.Issues())
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
