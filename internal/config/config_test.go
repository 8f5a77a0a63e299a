package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.DBPath != "data/versions.db" {
		t.Errorf("Unexpected default db path: %s", cfg.DBPath)
	}
	if cfg.Workflow.MaxAIIterations != 3 || cfg.Workflow.MaxHumanSubIterations != 2 {
		t.Errorf("Unexpected workflow defaults: %+v", cfg.Workflow)
	}
	if cfg.Scraper.ContentContainerID != "mw-content-text" {
		t.Errorf("Unexpected scraper container default: %s", cfg.Scraper.ContentContainerID)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load should fall back to defaults: %v", err)
	}
	if cfg.Workflow.MaxAIIterations != 3 {
		t.Errorf("Defaults not applied: %+v", cfg.Workflow)
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookspin.yaml")
	body := `
db_path: /tmp/custom.db
workflow:
  max_ai_iterations: 5
ai:
  rewrite_model: gemini-2.5-pro
scraper:
  content_container_id: article-body
logging:
  debug: true
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBPath != "/tmp/custom.db" {
		t.Errorf("db_path not loaded: %s", cfg.DBPath)
	}
	if cfg.Workflow.MaxAIIterations != 5 {
		t.Errorf("max_ai_iterations not loaded: %d", cfg.Workflow.MaxAIIterations)
	}
	// Untouched keys keep defaults.
	if cfg.Workflow.MaxHumanSubIterations != 2 {
		t.Errorf("Partial section lost defaults: %d", cfg.Workflow.MaxHumanSubIterations)
	}
	if cfg.AI.RewriteModel != "gemini-2.5-pro" {
		t.Errorf("rewrite_model not loaded: %s", cfg.AI.RewriteModel)
	}
	if cfg.Scraper.ContentContainerID != "article-body" {
		t.Errorf("container id not loaded: %s", cfg.Scraper.ContentContainerID)
	}
	if !cfg.Logging.Debug {
		t.Error("logging.debug not loaded")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BOOKSPIN_API_KEY", "key-from-env")
	t.Setenv("BOOKSPIN_DB_PATH", "/tmp/env.db")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.AI.APIKey != "key-from-env" {
		t.Errorf("API key env override not applied: %q", cfg.AI.APIKey)
	}
	if cfg.DBPath != "/tmp/env.db" {
		t.Errorf("DB path env override not applied: %q", cfg.DBPath)
	}
}

func TestGeminiKeyFallback(t *testing.T) {
	t.Setenv("BOOKSPIN_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.AI.APIKey != "gemini-key" {
		t.Errorf("GEMINI_API_KEY fallback not applied: %q", cfg.AI.APIKey)
	}
}

func TestValidateRejectsNegativeBounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("workflow:\n  max_ai_iterations: -1\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Expected validation error for negative iteration bound")
	}
}
