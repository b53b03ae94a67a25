package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Catalog.BaseURL != "https://fortnite-api.com" {
		t.Errorf("catalog base URL = %s", config.Catalog.BaseURL)
	}
	if config.Epic.RequestTimeout != "15s" {
		t.Errorf("epic request timeout = %s", config.Epic.RequestTimeout)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	config, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file must degrade to defaults: %v", err)
	}
	if config.Catalog.BaseURL == "" {
		t.Error("defaults not applied")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[epic]
request_timeout = "20s"

[catalog]
base_url = "http://localhost:9999"
api_key = "key-123"

[tables]
dir = "/tmp/tables"
watch = true

[cache]
dir = "/tmp/icons"
timeout = "45s"

[output]
dir = "/tmp/out"
style = 1
username = "tester"
db_path = "/tmp/data.db"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	config, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if config.Catalog.BaseURL != "http://localhost:9999" {
		t.Errorf("catalog base URL = %s", config.Catalog.BaseURL)
	}
	if config.Catalog.APIKey != "key-123" {
		t.Errorf("api key = %s", config.Catalog.APIKey)
	}
	if !config.Tables.Watch {
		t.Error("tables watch flag not parsed")
	}
	if config.Output.Username != "tester" {
		t.Errorf("username = %s", config.Output.Username)
	}

	timeout, err := config.GetEpicRequestTimeout()
	if err != nil {
		t.Fatalf("GetEpicRequestTimeout failed: %v", err)
	}
	if timeout != 20*time.Second {
		t.Errorf("epic timeout = %v", timeout)
	}

	cacheTimeout, err := config.GetCacheTimeout()
	if err != nil {
		t.Fatalf("GetCacheTimeout failed: %v", err)
	}
	if cacheTimeout != 45*time.Second {
		t.Errorf("cache timeout = %v", cacheTimeout)
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults ok", func(c *Config) {}, false},
		{"bad epic timeout", func(c *Config) { c.Epic.RequestTimeout = "soon" }, true},
		{"bad cache timeout", func(c *Config) { c.Cache.Timeout = "-" }, true},
		{"empty catalog url", func(c *Config) { c.Catalog.BaseURL = "" }, true},
		{"negative style", func(c *Config) { c.Output.Style = -1 }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			tc.mutate(config)

			err := config.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
