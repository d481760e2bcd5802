package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCLI executes the full command tree with args and returns what was
// written to stdout and stderr.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	root := NewRootCmd()
	AddCommands(root)

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	logger = nil
	return stdout.String(), stderr.String(), err
}

// writeConfig writes a config pointing at baseURL with notifications off.
func writeConfig(t *testing.T, baseURL string, extra ...string) string {
	t.Helper()
	t.Setenv("MEDIASTORE_URL", "")
	t.Setenv("MEDIASTORE_API_KEY", "")
	t.Setenv("HTTPS_PROXY", "")

	body := fmt.Sprintf("[server]\nbase_url = %s\n\n[upload]\nnotify = false\nmax_retries = 0\n", baseURL)
	for _, section := range extra {
		body += "\n" + section + "\n"
	}

	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// writeLocalFiles creates files with their names as content and returns the paths.
func writeLocalFiles(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, len(names))
	for i, name := range names {
		p := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("content of "+name), 0644); err != nil {
			t.Fatal(err)
		}
		paths[i] = p
	}
	return paths
}
