package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/mosaic/pkg/sim"
)

func TestConfigCommandDefaults(t *testing.T) {
	out, err := execute(t, "config")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := sim.ParseConfig([]byte(out))
	if err != nil {
		t.Fatalf("output does not parse as config: %v\n%s", err, out)
	}
	if cfg != sim.DefaultConfig() {
		t.Errorf("config = %+v, want defaults", cfg)
	}
}

func TestConfigCommandOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mosaic.toml")
	if err := os.WriteFile(path, []byte("width = 640.0\nfriction = 0.8\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "config", "-c", path)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := sim.ParseConfig([]byte(out))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 640 || cfg.Friction != 0.8 {
		t.Errorf("overlay lost: %+v", cfg)
	}
	if cfg.Height != sim.DefaultHeight {
		t.Errorf("height = %v, want default %v", cfg.Height, sim.DefaultHeight)
	}
}
