package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

const testCatalog = `
[[items]]
id = "1"
title = "Alpha"
category = "tools"
tags = ["red"]

[[items]]
id = "2"
title = "Beta"
category = "games"
tags = ["blue"]

[[items]]
id = "3"
title = "Gamma"
category = "tools"
tags = ["green"]

[[items]]
id = "4"
title = "Delta"
category = "music"
tags = ["red", "loud"]
`

// writeCatalog writes the test catalog into a temp dir and returns its path.
func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.toml")
	if err := os.WriteFile(path, []byte(testCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// execute runs the root command with args and returns what it wrote to its
// output stream. The cache is redirected to a temp dir.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	return executeRoot(t, args...)
}

// executeRoot runs the root command without touching the environment.
func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}
