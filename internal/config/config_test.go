package config

import (
	"os"
	"testing"
)

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{Port: 0},
		Storage: StorageConfig{Driver: "badger"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{Port: 8080},
		Storage: StorageConfig{Driver: "chroma"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown storage driver")
	}

	expected := `storage.driver must be "badger" or "redis", got "chroma"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_RedisRequiresAddrs(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{Port: 8080},
		Storage: StorageConfig{Driver: "redis"},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for redis driver without addrs")
	}

	cfg.Redis.Addrs = []string{"localhost:6379"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error with addrs set: %v", err)
	}
}

func TestValidate_BadgerNeedsNoAddrs(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{Port: 8080},
		Storage: StorageConfig{Driver: "badger"},
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 120 {
		t.Errorf("expected WriteTimeoutSec=120, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if len(cfg.HTTP.CORSOrigins) != 2 {
		t.Errorf("expected 2 default CORS origins, got %v", cfg.HTTP.CORSOrigins)
	}
	if cfg.Storage.Driver != "badger" {
		t.Errorf("expected Driver='badger', got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.Path != "~/.inkbase/knowledge_base" {
		t.Errorf("unexpected Path %q", cfg.Storage.Path)
	}
	if cfg.Storage.KeyPrefix != "inkbase:" {
		t.Errorf("expected KeyPrefix='inkbase:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Index.Dimensions != 768 {
		t.Errorf("expected Dimensions=768, got %d", cfg.Index.Dimensions)
	}
	if cfg.Index.HNSWM != 32 {
		t.Errorf("expected HNSWM=32, got %d", cfg.Index.HNSWM)
	}
	if cfg.Index.HNSWEFConstruct != 400 {
		t.Errorf("expected HNSWEFConstruct=400, got %d", cfg.Index.HNSWEFConstruct)
	}
	if cfg.Identity.PrefixLen != 500 {
		t.Errorf("expected PrefixLen=500, got %d", cfg.Identity.PrefixLen)
	}
	if cfg.Chat.Model != "gemini-2.5-flash" {
		t.Errorf("expected Model='gemini-2.5-flash', got %q", cfg.Chat.Model)
	}
	if cfg.Chat.ContextChars != 2000 {
		t.Errorf("expected ContextChars=2000, got %d", cfg.Chat.ContextChars)
	}
	if cfg.Chat.MaxContextDocs != 3 {
		t.Errorf("expected MaxContextDocs=3, got %d", cfg.Chat.MaxContextDocs)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Storage:  StorageConfig{Driver: "redis", Path: "/var/lib/inkbase", KeyPrefix: "custom:"},
		Index:    IndexConfig{Dimensions: 1536, HNSWM: 16, HNSWEFConstruct: 200},
		Identity: IdentityConfig{PrefixLen: 200},
		Chat:     ChatConfig{Model: "gemini-2.5-pro", ContextChars: 4000, MaxContextDocs: 5},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Storage.Driver != "redis" {
		t.Errorf("expected Driver='redis', got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Index.Dimensions != 1536 {
		t.Errorf("expected Dimensions=1536, got %d", cfg.Index.Dimensions)
	}
	if cfg.Identity.PrefixLen != 200 {
		t.Errorf("expected PrefixLen=200, got %d", cfg.Identity.PrefixLen)
	}
	if cfg.Chat.Model != "gemini-2.5-pro" {
		t.Errorf("expected Model='gemini-2.5-pro', got %q", cfg.Chat.Model)
	}
}

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("INKBASE_TEST_PORT", "9090")
	defer os.Unsetenv("INKBASE_TEST_PORT")

	in := []byte("port: ${INKBASE_TEST_PORT}\npath: ${INKBASE_TEST_MISSING:-/tmp/kb}\n")
	out := string(expandEnvVars(in))

	if out != "port: 9090\npath: /tmp/kb\n" {
		t.Errorf("expanded = %q", out)
	}
}
