package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width <= 0 || cfg.Window.Height <= 0 {
		t.Errorf("default window size invalid: %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if !cfg.Window.VSync {
		t.Error("vsync should default on")
	}
	if cfg.Camera.FovY <= 0 || cfg.Camera.Near <= 0 || cfg.Camera.Far <= cfg.Camera.Near {
		t.Errorf("default camera planes invalid: fov=%v near=%v far=%v",
			cfg.Camera.FovY, cfg.Camera.Near, cfg.Camera.Far)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level: got %q, want info", cfg.Logging.Level)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Window.Title = "round trip"
	cfg.Window.Width = 640
	cfg.Camera.Eye = [3]float32{1, 2, 3}
	cfg.Assets = []AssetConfig{
		{
			Path:          "models/fox.glb",
			Animation:     "Run",
			Translation:   [3]float32{0, 0, -2},
			RotationEuler: [3]float32{0, 90, 0},
			Scale:         [3]float32{0.01, 0.01, 0.01},
		},
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if loaded.Window.Title != cfg.Window.Title || loaded.Window.Width != cfg.Window.Width {
		t.Errorf("window settings lost: got %+v", loaded.Window)
	}
	if loaded.Camera.Eye != cfg.Camera.Eye {
		t.Errorf("camera eye lost: got %v, want %v", loaded.Camera.Eye, cfg.Camera.Eye)
	}
	if len(loaded.Assets) != 1 {
		t.Fatalf("expected 1 asset, got %d", len(loaded.Assets))
	}
	if loaded.Assets[0] != cfg.Assets[0] {
		t.Errorf("asset config lost: got %+v, want %+v", loaded.Assets[0], cfg.Assets[0])
	}
}

func TestLoadFileMergesOverDefaults(t *testing.T) {
	// A partial file overrides only the keys it names.
	partial := "window:\n  title: custom\n"
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte(partial), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Window.Title != "custom" {
		t.Errorf("file value not applied: got %q", cfg.Window.Title)
	}
	if cfg.Window.Height != Default().Window.Height {
		t.Errorf("default height lost: got %d", cfg.Window.Height)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level lost: got %q", cfg.Logging.Level)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
