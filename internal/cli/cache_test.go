package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/mosaic/pkg/cache"
)

func TestCacheClearCommand(t *testing.T) {
	xdg := t.TempDir()
	dir := filepath.Join(xdg, appName)
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, k := range []string{"frame:a", "artifact:b"} {
		if err := fc.Set(ctx, k, []byte("x"), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	root := New(os.Stderr, LogInfo).RootCommand()
	t.Setenv("XDG_CACHE_HOME", xdg)
	root.SetArgs([]string{"cache", "clear"})
	if err := root.Execute(); err != nil {
		t.Fatalf("cache clear: %v", err)
	}

	if _, hit, _ := fc.Get(ctx, "frame:a"); hit {
		t.Error("entry survived cache clear")
	}
}

func TestCacheClearMissingDir(t *testing.T) {
	if _, err := execute(t, "cache", "clear"); err != nil {
		t.Errorf("cache clear on missing dir: %v", err)
	}
}

func TestCachePathCommand(t *testing.T) {
	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(os.Getenv("XDG_CACHE_HOME"), appName)
	if strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}
}

func TestCacheDir(t *testing.T) {
	t.Run("xdg", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")
		dir, err := cacheDir()
		if err != nil {
			t.Fatal(err)
		}
		if want := filepath.Join("/tmp/custom-cache", appName); dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})

	t.Run("home", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", "")
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skip("no home directory")
		}
		dir, err := cacheDir()
		if err != nil {
			t.Fatal(err)
		}
		if want := filepath.Join(home, ".cache", appName); dir != want {
			t.Errorf("cacheDir() = %q, want %q", dir, want)
		}
	})
}

func TestNewCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c, err := newCache(true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*cache.NullCache); !ok {
		t.Errorf("newCache(true) = %T, want *cache.NullCache", c)
	}

	c, err = newCache(false)
	if err != nil {
		t.Fatal(err)
	}
	fc, ok := c.(*cache.FileCache)
	if !ok {
		t.Fatalf("newCache(false) = %T, want *cache.FileCache", c)
	}
	if want := filepath.Join(os.Getenv("XDG_CACHE_HOME"), appName); fc.Dir() != want {
		t.Errorf("Dir() = %q, want %q", fc.Dir(), want)
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, err := execute(t, "completion", shell)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out, appName) {
				t.Errorf("%s completion does not mention %s", shell, appName)
			}
		})
	}
	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("expected an error for an unsupported shell")
	}
}

func TestCacheInfoAndExpiredClear(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	out, err := executeRoot(t, "cache", "info")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "0 B") {
		t.Errorf("empty cache info:\n%s", out)
	}

	fc, err := cache.NewFileCache(filepath.Join(xdg, appName))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := fc.Set(ctx, "stale", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	if err := fc.Set(ctx, "fresh", []byte("y"), time.Hour); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)

	out, err = executeRoot(t, "cache", "info")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "entries") || !strings.Contains(out, "2") {
		t.Errorf("cache info:\n%s", out)
	}

	out, err = executeRoot(t, "cache", "clear", "--expired")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cleared 1 expired entries") {
		t.Errorf("clear --expired output:\n%s", out)
	}
	if _, hit, _ := fc.Get(ctx, "fresh"); !hit {
		t.Error("clear --expired removed a live entry")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
