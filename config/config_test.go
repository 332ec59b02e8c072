package config

import (
	"os"
	"strings"
	"testing"

	"digital-library/library"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != "sqlite" || cfg.SQLitePath != "library.db" {
		t.Fatalf("unexpected storage defaults: %+v", cfg)
	}
	if cfg.CatalogSize != library.DefaultCatalogSize || cfg.PendingWindowDays != library.DefaultPendingWindowDays {
		t.Fatalf("unexpected library defaults: %+v", cfg)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected http addr %q", cfg.HTTPAddr)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(".env", []byte("LIBRARY_BACKEND=memory\nLIBRARY_CATALOG_SIZE=25\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	// Real environment wins over the file.
	t.Setenv("LIBRARY_CATALOG_SIZE", "50")
	t.Cleanup(func() { os.Unsetenv("LIBRARY_BACKEND") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != "memory" {
		t.Fatalf("want backend from .env, got %q", cfg.Backend)
	}
	if cfg.CatalogSize != 50 {
		t.Fatalf("want catalog size from env, got %d", cfg.CatalogSize)
	}
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("LIBRARY_CATALOG_SIZE", "lots")
	var cfg Config
	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestGatewayConfig(t *testing.T) {
	cfg := Config{
		Backend:     "s3",
		S3Bucket:    "books",
		S3Region:    "eu-west-1",
		S3Endpoint:  "http://localhost:9000",
		S3Prefix:    "lib/",
		S3PathStyle: true,
	}
	gc := cfg.GatewayConfig()
	if gc.Backend != library.BackendS3 {
		t.Fatalf("unexpected backend %q", gc.Backend)
	}
	want := library.S3Config{Region: "eu-west-1", Bucket: "books", Prefix: "lib/", Endpoint: "http://localhost:9000", PathStyle: true}
	if gc.S3 != want {
		t.Fatalf("unexpected s3 config %+v", gc.S3)
	}
}

func TestManagerOptions(t *testing.T) {
	opts := Config{CatalogSize: 10, PendingWindowDays: 5}.ManagerOptions()
	if opts.Rand != nil {
		t.Fatalf("zero seed should leave the random source unset")
	}
	seeded := Config{CatalogSeed: 42}.ManagerOptions()
	if seeded.Rand == nil {
		t.Fatalf("seed should configure the random source")
	}
	a := library.GenerateSeedCatalog(seeded.Rand, 3)
	b := library.GenerateSeedCatalog(library.NewRand(42), 3)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("seeded catalog differs at %d", i)
		}
	}
}

func TestLoadRejectsNonPositiveWindows(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"zero pending window", "LIBRARY_PENDING_WINDOW_DAYS", "0"},
		{"negative pending window", "LIBRARY_PENDING_WINDOW_DAYS", "-2"},
		{"zero catalog size", "LIBRARY_CATALOG_SIZE", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil {
				t.Fatalf("%s=%s: expected error", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Fatalf("error should name %s, got %v", tt.key, err)
			}
		})
	}
}

func TestLoadAcceptsOneDayPendingWindow(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LIBRARY_PENDING_WINDOW_DAYS", "1")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.ManagerOptions().PendingWindowDays; got != 1 {
		t.Fatalf("PendingWindowDays = %d, want 1", got)
	}
}
