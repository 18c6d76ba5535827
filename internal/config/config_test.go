package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fullYAML = `
server:
  port: 9090

database:
  host: 10.0.0.5
  port: 5433
  name: synctech_prod
  user: synctech
  password: secret
  sslmode: require

finance:
  overdue_sweep: "*/30 * * * *"

scope_types:
  - name: Frontend
    description: UI work
    color_hex: "#3B82F6"
    icon_name: Monitor
  - name: Backend
    color_hex: "#10B981"
    icon_name: Database
`

func TestParse_Full(t *testing.T) {
	cfg, err := Parse([]byte(fullYAML))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Host != "10.0.0.5" {
		t.Errorf("Database.Host = %q, want 10.0.0.5", cfg.Database.Host)
	}
	if cfg.Database.Port != 5433 {
		t.Errorf("Database.Port = %d, want 5433", cfg.Database.Port)
	}
	if cfg.Database.SSLMode != "require" {
		t.Errorf("Database.SSLMode = %q, want require", cfg.Database.SSLMode)
	}
	if cfg.Finance.OverdueSweep != "*/30 * * * *" {
		t.Errorf("Finance.OverdueSweep = %q", cfg.Finance.OverdueSweep)
	}
	if len(cfg.ScopeTypes) != 2 {
		t.Fatalf("len(ScopeTypes) = %d, want 2", len(cfg.ScopeTypes))
	}
	if cfg.ScopeTypes[1].Name != "Backend" {
		t.Errorf("ScopeTypes[1].Name = %q, want Backend", cfg.ScopeTypes[1].Name)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "127.0.0.1" {
		t.Errorf("Database.Host = %q, want 127.0.0.1", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Database.Port = %d, want 5432", cfg.Database.Port)
	}
	if cfg.Database.Name != "synctech" {
		t.Errorf("Database.Name = %q, want synctech", cfg.Database.Name)
	}
	if cfg.Database.SSLMode != "disable" {
		t.Errorf("Database.SSLMode = %q, want disable", cfg.Database.SSLMode)
	}
	if cfg.Finance.OverdueSweep != "0 6 * * *" {
		t.Errorf("Finance.OverdueSweep = %q, want daily default", cfg.Finance.OverdueSweep)
	}
	if len(cfg.ScopeTypes) != 8 {
		t.Errorf("len(ScopeTypes) = %d, want 8 built-in catalog rows", len(cfg.ScopeTypes))
	}
}

func TestParse_DuplicateScopeType(t *testing.T) {
	_, err := Parse([]byte(`
scope_types:
  - name: Frontend
  - name: Frontend
`))
	if err == nil {
		t.Fatal("Parse() accepted duplicated scope type name")
	}
	if !strings.Contains(err.Error(), "duplicated") {
		t.Errorf("error = %v, want mention of duplication", err)
	}
}

func TestParse_MissingScopeTypeName(t *testing.T) {
	_, err := Parse([]byte(`
scope_types:
  - description: no name here
`))
	if err == nil {
		t.Fatal("Parse() accepted scope type without a name")
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("server: [not a map"))
	if err == nil {
		t.Fatal("Parse() accepted invalid YAML")
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "synctech.yaml")
	if err := os.WriteFile(path, []byte(fullYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Database.Name != "synctech_prod" {
		t.Errorf("Database.Name = %q, want synctech_prod", cfg.Database.Name)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() succeeded on missing file")
	}
}
