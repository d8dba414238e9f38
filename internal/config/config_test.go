package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoad(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "docdb.yaml")
		cfg, err := Load(path)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(Default(), *cfg); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("defaults not written: %v", err)
		}
		again, err := Load(path)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(Default(), *again); diff != "" {
			t.Errorf("written defaults mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope", "docdb.yaml")); err == nil {
			t.Error("Load succeeded writing into a missing directory")
		}
	})

	t.Run("overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "docdb.yaml")
		data := "db: /tmp/x.json\nlog_level: debug\nauto_flush:\n  min_interval: 2s\n  burst: 3\nwatch: true\n"
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(path)
		if err != nil {
			t.Fatal(err)
		}
		want := Config{
			DB:        "/tmp/x.json",
			LogLevel:  "debug",
			Pretty:    true,
			AutoFlush: AutoFlush{MinInterval: 2 * time.Second, Burst: 3},
			Watch:     true,
		}
		if diff := cmp.Diff(want, *cfg); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name string
			data string
			want string
		}{
			{"log level", "log_level: loud\n", "unknown log level"},
			{"burst", "auto_flush:\n  burst: -1\n", "burst must be non-negative"},
			{"interval", "auto_flush:\n  min_interval: -1s\n", "min_interval must be non-negative"},
			{"db", "db: \"\"\n", "db is required"},
			{"syntax", "db: [\n", "failed to parse"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "docdb.yaml")
				if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
					t.Fatal(err)
				}
				_, err := Load(path)
				if err == nil || !strings.Contains(err.Error(), tt.want) {
					t.Errorf("Load = %v, want %q", err, tt.want)
				}
			})
		}
	})
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docdb.yaml")
	cfg := Default()
	cfg.AutoFlush = AutoFlush{MinInterval: time.Minute, Burst: 1}
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(cfg, *got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	bad := Default()
	bad.LogLevel = "x"
	if err := bad.Save(path); err == nil {
		t.Error("Save accepted an invalid config")
	}
}

func TestStoreOptions(t *testing.T) {
	cfg := Default()
	l := slog.New(slog.DiscardHandler)
	if got := len(cfg.StoreOptions(l)); got != 2 {
		t.Errorf("len(StoreOptions) = %d, want 2", got)
	}
	cfg.AutoFlush.Burst = 1
	if got := len(cfg.StoreOptions(l)); got != 3 {
		t.Errorf("len(StoreOptions) = %d, want 3", got)
	}
}
