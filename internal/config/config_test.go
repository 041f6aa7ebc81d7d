package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.BackupPath != "db_backup" {
		t.Errorf("Expected backup_path to be 'db_backup', got '%s'", cfg.BackupPath)
	}

	if cfg.Database.Provider != "postgresql" {
		t.Errorf("Expected database provider to be 'postgresql', got '%s'", cfg.Database.Provider)
	}

	if cfg.Database.URLEnv != "DATABASE_URL" {
		t.Errorf("Expected database url_env to be 'DATABASE_URL', got '%s'", cfg.Database.URLEnv)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		BackupPath: "db_backup",
		Database:   Database{Provider: "sqlite", URLEnv: "DATABASE_URL"},
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config, got error: %v", err)
	}

	cfg.Database.Provider = "oracle"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected unsupported provider to fail validation, but it passed")
	}

	cfg.Database.Provider = "postgres"
	cfg.RulesPath = "does/not/exist.yaml"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected missing rules file to fail validation, but it passed")
	}
}

func TestGetDatabaseURL(t *testing.T) {
	cfg := &Config{Database: Database{URLEnv: "RESTOCK_TEST_DB_URL"}}

	os.Unsetenv("RESTOCK_TEST_DB_URL")
	if _, err := cfg.GetDatabaseURL(); err == nil {
		t.Error("Expected error when env variable is unset, got nil")
	}

	t.Setenv("RESTOCK_TEST_DB_URL", "postgres://localhost/stock")
	url, err := cfg.GetDatabaseURL()
	if err != nil {
		t.Fatalf("Failed to get database URL: %v", err)
	}
	if url != "postgres://localhost/stock" {
		t.Errorf("Expected URL from environment, got '%s'", url)
	}
}

func TestDriverName(t *testing.T) {
	cases := map[string]string{
		"postgresql": "postgres",
		"postgres":   "postgres",
		"mysql":      "mysql",
		"sqlite":     "sqlite3",
		"sqlite3":    "sqlite3",
	}
	for provider, driver := range cases {
		cfg := &Config{Database: Database{Provider: provider}}
		if got := cfg.DriverName(); got != driver {
			t.Errorf("Expected driver '%s' for provider '%s', got '%s'", driver, provider, got)
		}
	}
}

func TestSaveAndReload(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "restock.config.json")
	cfg := &Config{
		Version:    "1",
		RulesPath:  "rules.yaml",
		BackupPath: "backups",
		Database:   Database{Provider: "sqlite", URLEnv: "DATABASE_URL"},
	}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("Failed to read saved config: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}
	if loaded.BackupPath != "backups" {
		t.Errorf("Expected backup_path 'backups', got '%s'", loaded.BackupPath)
	}
	if loaded.Database.Provider != "sqlite" {
		t.Errorf("Expected provider 'sqlite', got '%s'", loaded.Database.Provider)
	}
}
