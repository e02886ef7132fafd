package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	configContent := `
server:
  port: 9090
database:
  path: "/tmp/test-registro.db"
storage:
  endpoint: "localhost:9000"
  access_key: "minioadmin"
  secret_key: "minioadmin"
  bucket: "test-bucket"
  use_ssl: false
  expire_days: 14
extractor:
  api_url: "https://api.extractor.test"
  api_token: "test-token"
  model: "gpt-4o-mini"
auth:
  jwt_secret: "test-secret"
  token_expire_hours: 48
log:
  level: "debug"
  format: "json"
browse:
  document_page_size: 25
  contract_page_size: 15
users:
  - username: "testuser"
    password: "testpass"
    name: "Test User"
    admin: true
`
	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(configContent); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Database.Path != "/tmp/test-registro.db" {
		t.Errorf("Expected database path /tmp/test-registro.db, got %s", cfg.Database.Path)
	}
	if cfg.Storage.Endpoint != "localhost:9000" {
		t.Errorf("Expected endpoint localhost:9000, got %s", cfg.Storage.Endpoint)
	}
	if cfg.Storage.ExpireDays != 14 {
		t.Errorf("Expected expire days 14, got %d", cfg.Storage.ExpireDays)
	}
	if cfg.Extractor.APIURL != "https://api.extractor.test" {
		t.Errorf("Expected extractor api url, got %s", cfg.Extractor.APIURL)
	}
	if cfg.Auth.TokenExpireHours != 48 {
		t.Errorf("Expected token expire hours 48, got %d", cfg.Auth.TokenExpireHours)
	}
	if cfg.Browse.DocumentPageSize != 25 {
		t.Errorf("Expected document page size 25, got %d", cfg.Browse.DocumentPageSize)
	}
	if len(cfg.Users) != 1 || cfg.Users[0].Username != "testuser" || !cfg.Users[0].Admin {
		t.Errorf("Unexpected seed users: %+v", cfg.Users)
	}

	if GlobalConfig != cfg {
		t.Error("Expected GlobalConfig to be set after Load")
	}
}

func TestLoadDefaults(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString("auth:\n  jwt_secret: \"s\"\n"); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Database.Path != "data/registro.db" {
		t.Errorf("Expected default database path, got %s", cfg.Database.Path)
	}
	if cfg.Storage.ExpireDays != 7 {
		t.Errorf("Expected default expire days 7, got %d", cfg.Storage.ExpireDays)
	}
	if cfg.Auth.TokenExpireHours != 24 {
		t.Errorf("Expected default token expire hours 24, got %d", cfg.Auth.TokenExpireHours)
	}
	if cfg.Extractor.TimeoutSeconds != 60 {
		t.Errorf("Expected default extractor timeout 60, got %d", cfg.Extractor.TimeoutSeconds)
	}
	if cfg.Browse.DocumentPageSize != 20 || cfg.Browse.ContractPageSize != 10 {
		t.Errorf("Expected default page sizes 20/10, got %d/%d",
			cfg.Browse.DocumentPageSize, cfg.Browse.ContractPageSize)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for missing config file")
	}
}
