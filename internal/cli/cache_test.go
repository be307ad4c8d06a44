package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/stagegraph/pkg/config"
)

func TestDescribeCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir := describeCache(config.Default())
	if !strings.HasSuffix(dir, appName) {
		t.Errorf("describeCache() = %q, should end with %q", dir, appName)
	}
	if !strings.HasPrefix(dir, os.Getenv("XDG_CACHE_HOME")) {
		t.Errorf("describeCache() = %q, should be under XDG_CACHE_HOME", dir)
	}

	cfg := config.Default()
	cfg.Cache.Backend = config.BackendRedis
	cfg.Cache.Redis.Addr = "localhost:6379"
	cfg.Cache.Redis.Prefix = "sg:"
	if got := describeCache(cfg); !strings.HasPrefix(got, "redis://localhost:6379/") || !strings.Contains(got, `"sg:"`) {
		t.Errorf("describeCache(redis) = %q", got)
	}

	cfg.Cache.Backend = config.BackendNone
	if got := describeCache(cfg); got != "none" {
		t.Errorf("describeCache(none) = %q, want none", got)
	}
}

func TestClearCache(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Cache.Dir = t.TempDir()

	for _, name := range []string{"a.json", "b.json"} {
		if err := os.WriteFile(filepath.Join(cfg.Cache.Dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	n, err := clearCache(ctx, cfg)
	if err != nil {
		t.Fatalf("clearCache() error: %v", err)
	}
	if n != 2 {
		t.Errorf("clearCache() = %d, want 2", n)
	}
	if n, err := clearCache(ctx, cfg); err != nil || n != 0 {
		t.Errorf("second clearCache() = %d, %v, want 0", n, err)
	}

	cfg.Cache.Backend = config.BackendNone
	if n, err := clearCache(ctx, cfg); err != nil || n != 0 {
		t.Errorf("clearCache(none) = %d, %v", n, err)
	}
}

func TestCacheLabel(t *testing.T) {
	if got := cacheLabel(config.BackendFile, true); got != "disabled" {
		t.Errorf("cacheLabel(noCache) = %q", got)
	}
	if got := cacheLabel(config.BackendRedis, false); got != config.BackendRedis {
		t.Errorf("cacheLabel(redis) = %q", got)
	}
}
