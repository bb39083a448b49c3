package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DebounceMs != 250 {
		t.Errorf("DebounceMs = %d, want 250", cfg.DebounceMs)
	}
	if cfg.SizeGateBudgetBytes != 20*1024*1024 {
		t.Errorf("SizeGateBudgetBytes = %d, want 20MiB", cfg.SizeGateBudgetBytes)
	}
	if cfg.SingleInferredProject {
		t.Error("SingleInferredProject should default to false")
	}
	if len(cfg.ConfigFileNames) != 2 || cfg.ConfigFileNames[0] != "tsconfig.json" {
		t.Errorf("ConfigFileNames = %v, want [tsconfig.json jsconfig.json]", cfg.ConfigFileNames)
	}
}

func TestDebounceDelay(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.DebounceDelay().Milliseconds(); got != 250 {
		t.Errorf("DebounceDelay() = %dms, want 250ms", got)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DebounceMs != 250 {
		t.Errorf("DebounceMs = %d, want default 250", cfg.DebounceMs)
	}
}

func TestLoadFromJSON(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, ".pscoord")
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	body := `{"debounceMs": 50, "singleInferredProject": true}`
	if err := os.WriteFile(filepath.Join(cfgDir, "config.json"), []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DebounceMs != 50 {
		t.Errorf("DebounceMs = %d, want 50", cfg.DebounceMs)
	}
	if !cfg.SingleInferredProject {
		t.Error("SingleInferredProject should be true from config file")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PSCOORD_DEBOUNCEMS", "99")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DebounceMs != 99 {
		t.Errorf("DebounceMs = %d, want 99 from env override", cfg.DebounceMs)
	}
}
