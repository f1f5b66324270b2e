package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimal = `
environment: test
provider:
  base_url: https://quotes.example.com/v1
`

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, minimal))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if c.Scan.Universe != "comprehensive" {
		t.Fatalf("Scan.Universe = %q, want comprehensive", c.Scan.Universe)
	}
	if c.Scan.MinChangePercent != 10 {
		t.Fatalf("Scan.MinChangePercent = %v, want 10", c.Scan.MinChangePercent)
	}
	if !c.Scan.PositiveOnly {
		t.Fatal("Scan.PositiveOnly should default to true")
	}
	if c.Provider.AvgVolumeWindow != "3mo" {
		t.Fatalf("Provider.AvgVolumeWindow = %q, want 3mo", c.Provider.AvgVolumeWindow)
	}
	if c.Cache.Backend != "memory" {
		t.Fatalf("Cache.Backend = %q, want memory", c.Cache.Backend)
	}
}

func TestLoadRejectsMissingProviderURL(t *testing.T) {
	if _, err := Load(writeConfig(t, "environment: test\n")); err == nil {
		t.Fatal("Load() accepted config without provider.base_url")
	}
}

func TestLoadRejectsEnabledSinkWithoutTarget(t *testing.T) {
	_, err := Load(writeConfig(t, minimal+`
sinks:
  kafka:
    enabled: true
`))
	if err == nil {
		t.Fatal("Load() accepted kafka sink without brokers")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("MARKET_API_KEY", "secret-key")
	t.Setenv("SCAN_UNIVERSE", "semiconductor")

	c, err := LoadWithEnv(writeConfig(t, minimal))
	if err != nil {
		t.Fatalf("LoadWithEnv() error = %v", err)
	}
	if c.Provider.APIKey != "secret-key" {
		t.Fatalf("Provider.APIKey = %q, want env override", c.Provider.APIKey)
	}
	if c.Scan.Universe != "semiconductor" {
		t.Fatalf("Scan.Universe = %q, want semiconductor", c.Scan.Universe)
	}
}

func TestSanitizeMinChange(t *testing.T) {
	cases := []struct {
		in    float64
		want  float64
		valid bool
	}{
		{10, 10, true},
		{5, 5, true},
		{20, 20, true},
		{4.9, DefaultMinChange, false},
		{25, DefaultMinChange, false},
		{-3, DefaultMinChange, false},
	}
	for _, tc := range cases {
		got, ok := SanitizeMinChange(tc.in)
		if got != tc.want || ok != tc.valid {
			t.Fatalf("SanitizeMinChange(%v) = (%v, %v), want (%v, %v)",
				tc.in, got, ok, tc.want, tc.valid)
		}
	}
}
