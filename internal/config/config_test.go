package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("addr = %q, want %q", cfg.Addr, ":8080")
	}
	if cfg.Limits.MaxTags != 32 {
		t.Errorf("max tags = %d, want 32", cfg.Limits.MaxTags)
	}
	if cfg.Metadata.TimeoutSeconds != 10 {
		t.Errorf("metadata timeout = %d, want 10", cfg.Metadata.TimeoutSeconds)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("addr: \":9090\"\ndb_path: /tmp/test.db\nlimits:\n  max_tags: 8\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("addr = %q, want %q", cfg.Addr, ":9090")
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("db_path = %q, want %q", cfg.DBPath, "/tmp/test.db")
	}
	if cfg.Limits.MaxTags != 8 {
		t.Errorf("max tags = %d, want 8", cfg.Limits.MaxTags)
	}
	// Unset fields keep defaults
	if cfg.Limits.MaxTitleLen != 200 {
		t.Errorf("max title len = %d, want 200", cfg.Limits.MaxTitleLen)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STASH_ADDR", ":7070")
	t.Setenv("STASH_BACKUP_ENABLED", "true")
	t.Setenv("STASH_METADATA_TIMEOUT", "3")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Errorf("addr = %q, want %q", cfg.Addr, ":7070")
	}
	if !cfg.Backup.Enabled {
		t.Error("expected backup enabled")
	}
	if cfg.MetadataTimeout().Seconds() != 3 {
		t.Errorf("metadata timeout = %v, want 3s", cfg.MetadataTimeout())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}
