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
	if cfg.Seed != 42 {
		t.Errorf("seed = %d, want 42", cfg.Seed)
	}
	if cfg.DaysPerSeason != 90 {
		t.Errorf("days_per_season = %d, want 90", cfg.DaysPerSeason)
	}
	if cfg.APIPort != 8080 {
		t.Errorf("api_port = %d, want 8080", cfg.APIPort)
	}
}

func TestFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "seed: 7\ndays_per_season: 30\napi_port: 9000\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Seed != 7 || cfg.DaysPerSeason != 30 || cfg.APIPort != 9000 {
		t.Errorf("got seed=%d days=%d port=%d", cfg.Seed, cfg.DaysPerSeason, cfg.APIPort)
	}
	// Untouched keys keep defaults.
	if cfg.TickSeconds != 1.0 {
		t.Errorf("tick_seconds = %v, want 1.0", cfg.TickSeconds)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api_port: 9000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CROWNWORKS_API_PORT", "7777")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIPort != 7777 {
		t.Errorf("api_port = %d, want env override 7777", cfg.APIPort)
	}
}

func TestRejectsBadValues(t *testing.T) {
	for name, data := range map[string]string{
		"negative port": "api_port: -1\n",
		"zero season":   "days_per_season: 0\n",
		"zero tick":     "tick_seconds: 0\n",
	} {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: accepted invalid config", name)
		}
	}
}

func TestMissingFileIsAnError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing named config accepted")
	}
}
