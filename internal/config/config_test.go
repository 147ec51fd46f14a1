package config

import (
	"runtime"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Workers != runtime.NumCPU() {
		t.Errorf("Workers = %d, want %d", cfg.Workers, runtime.NumCPU())
	}

	if cfg.Apparent || cfg.Quiet || cfg.Verbose {
		t.Errorf("boolean defaults = %+v, want all false", cfg)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("DUX_WORKERS", "3")
	t.Setenv("DUX_QUIET", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}

	if !cfg.Quiet {
		t.Error("Quiet = false, want true")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		wantErr bool
	}{
		{"one worker", 1, false},
		{"many workers", 32, false},
		{"zero workers", 0, true},
		{"negative workers", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Workers: tt.workers}
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
