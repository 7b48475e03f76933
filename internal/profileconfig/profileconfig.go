// Package profileconfig loads the hierarchical endpoint-profile YAML file
// into Go types: a named map of endpoint.Profile and a named map of
// loadengine-facing TestConfig. It is intentionally thin — a single-pass
// load with no hot-reload or schema registry.
package profileconfig

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/torosent/llmbench/internal/endpoint"
)

// TestConfig carries the sweep parameters for one named test configuration.
// There is no retry-count field: the executor's retry policy is a fixed
// package constant, not a per-config setting.
type TestConfig struct {
	ConcurrentLevels []int         `yaml:"concurrent_levels"`
	RequestsPerLevel int           `yaml:"requests_per_level"`
	Timeout          time.Duration `yaml:"timeout"`
	RampUpTime       time.Duration `yaml:"ramp_up_time"`
	CoolDownTime     time.Duration `yaml:"cool_down_time"`
}

// rawProfile mirrors the on-disk shape of one endpoint profile entry; it is
// decoded then converted into endpoint.Profile.
type rawProfile struct {
	BaseURL     string            `yaml:"base_url"`
	Endpoints   map[string]string `yaml:"endpoints"`
	Headers     yaml.Node         `yaml:"headers"`
	RequestBody any               `yaml:"request_body"`
}

// File is the decoded shape of the profile-config file on disk.
type File struct {
	Profiles map[string]rawProfile `yaml:"profiles"`
	Configs  map[string]TestConfig `yaml:"test_configs"`
}

// ValidationError accumulates every structural issue found while loading a
// profile-config file, following the same fail-closed, multi-issue idiom
// used throughout this codebase.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "profile config validation failed"
	}
	return fmt.Sprintf("profile config validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

// Result is the fully decoded and validated profile-config file.
type Result struct {
	Profiles map[string]endpoint.Profile
	Configs  map[string]TestConfig
}

// Load reads and decodes path into a Result, converting each raw profile
// entry into an endpoint.Profile (header ordering is preserved from the
// YAML mapping, which is why Headers decodes via yaml.Node rather than a
// plain map).
func Load(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("profileconfig: read %s: %w", path, err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Result{}, fmt.Errorf("profileconfig: parse %s: %w", path, err)
	}

	var issues []string
	profiles := make(map[string]endpoint.Profile, len(file.Profiles))
	for name, raw := range file.Profiles {
		profile, profileIssues := convertProfile(name, raw)
		issues = append(issues, profileIssues...)
		profiles[name] = profile
	}

	for name, cfg := range file.Configs {
		if len(cfg.ConcurrentLevels) == 0 {
			issues = append(issues, fmt.Sprintf("test config %q: concurrent_levels must be non-empty", name))
		}
		if cfg.RequestsPerLevel <= 0 {
			issues = append(issues, fmt.Sprintf("test config %q: requests_per_level must be > 0", name))
		}
	}

	if len(issues) > 0 {
		return Result{}, ValidationError{issues: issues}
	}

	return Result{Profiles: profiles, Configs: file.Configs}, nil
}

func convertProfile(name string, raw rawProfile) (endpoint.Profile, []string) {
	var issues []string
	if strings.TrimSpace(raw.BaseURL) == "" {
		issues = append(issues, fmt.Sprintf("profile %q: base_url is required", name))
	}
	if len(raw.Endpoints) == 0 {
		issues = append(issues, fmt.Sprintf("profile %q: at least one endpoint kind is required", name))
	}

	headers, err := decodeOrderedHeaders(raw.Headers)
	if err != nil {
		issues = append(issues, fmt.Sprintf("profile %q: headers: %s", name, err))
	}

	return endpoint.Profile{
		Name:        name,
		BaseURL:     raw.BaseURL,
		Endpoints:   raw.Endpoints,
		Headers:     headers,
		RequestBody: raw.RequestBody,
	}, issues
}

// decodeOrderedHeaders walks a YAML mapping node directly so header
// insertion order from the file survives into []endpoint.HeaderTemplate,
// which a map[string]string decode would lose.
func decodeOrderedHeaders(node yaml.Node) ([]endpoint.HeaderTemplate, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping")
	}
	headers := make([]endpoint.HeaderTemplate, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		headers = append(headers, endpoint.HeaderTemplate{
			Name:  node.Content[i].Value,
			Value: node.Content[i+1].Value,
		})
	}
	return headers, nil
}
