package config

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENGINE_PATH", "")
	t.Setenv("TABLEBASE_PATH", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("BATCH_SIZE", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Engine.Path != "stockfish" {
		t.Fatalf("engine path = %q, want stockfish", cfg.Engine.Path)
	}
	if cfg.Engine.TablebasePath != "/usr/share/syzygy" {
		t.Fatalf("tablebase path = %q", cfg.Engine.TablebasePath)
	}
	if cfg.HTTPAddr != "0.0.0.0:8080" {
		t.Fatalf("http addr = %q", cfg.HTTPAddr)
	}
	if cfg.BatchSize != 100 {
		t.Fatalf("batch size = %d, want 100", cfg.BatchSize)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("ENGINE_PATH", "/opt/engines/sf16")
	t.Setenv("TABLEBASE_PATH", "/data/tb")
	t.Setenv("BATCH_SIZE", "25")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Engine.Path != "/opt/engines/sf16" {
		t.Fatalf("engine path = %q", cfg.Engine.Path)
	}
	if cfg.Engine.TablebasePath != "/data/tb" {
		t.Fatalf("tablebase path = %q", cfg.Engine.TablebasePath)
	}
	if cfg.BatchSize != 25 {
		t.Fatalf("batch size = %d, want 25", cfg.BatchSize)
	}
}
