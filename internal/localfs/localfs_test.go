package localfs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".hidden", true},
		{".gitignore", true},
		{"visible.txt", false},
		{"normal", false},
		{"/path/to/.hidden", true},
		{"/path/to/visible.txt", false},
		{"../.hidden", true},
		{"../visible.txt", false},
		{"..", false}, // Special case: parent dir reference
		{".", false},  // Special case: current dir reference
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			result := IsHidden(tt.path)
			if result != tt.expected {
				t.Errorf("IsHidden(%q) = %v, want %v", tt.path, result, tt.expected)
			}
		})
	}
}

// tree creates:
//
//	root/
//	  b.png
//	  a.json
//	  .hidden.png
//	  sub/
//	    c.mp4
//	  .cache/
//	    d.png
func tree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"b.png":        "b",
		"a.json":       "{}",
		".hidden.png":  "h",
		"sub/c.mp4":    "ccc",
		".cache/d.png": "d",
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func names(entries []FileEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestWalkFiles(t *testing.T) {
	root := tree(t)

	t.Run("skip hidden", func(t *testing.T) {
		var got []FileEntry
		err := WalkFiles(root, WalkOptions{SkipHiddenDirs: true}, func(e FileEntry) error {
			got = append(got, e)
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
		if strings.Join(names(got), ",") != "a.json,b.png,c.mp4" {
			t.Errorf("got %v", names(got))
		}
	})

	t.Run("include hidden", func(t *testing.T) {
		count := 0
		err := WalkFiles(root, WalkOptions{IncludeHidden: true}, func(e FileEntry) error {
			count++
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
		if count != 5 {
			t.Errorf("got %d files, want 5", count)
		}
	})
}

func TestExpand(t *testing.T) {
	root := tree(t)

	t.Run("explicit files keep argument order", func(t *testing.T) {
		got, err := Expand([]string{
			filepath.Join(root, "b.png"),
			filepath.Join(root, ".hidden.png"),
			filepath.Join(root, "a.json"),
			filepath.Join(root, "b.png"),
		}, ExpandOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if strings.Join(names(got), ",") != "b.png,.hidden.png,a.json" {
			t.Errorf("got %v", names(got))
		}
		if got[0].Size != 1 {
			t.Errorf("size = %d, want 1", got[0].Size)
		}
	})

	t.Run("directory needs recursive", func(t *testing.T) {
		_, err := Expand([]string{root}, ExpandOptions{})
		if err == nil || !strings.Contains(err.Error(), "--recursive") {
			t.Errorf("expected recursive hint, got %v", err)
		}
	})

	t.Run("recursive skips hidden", func(t *testing.T) {
		got, err := Expand([]string{root}, ExpandOptions{Recursive: true})
		if err != nil {
			t.Fatal(err)
		}
		if strings.Join(names(got), ",") != "a.json,b.png,c.mp4" {
			t.Errorf("got %v", names(got))
		}
	})

	t.Run("missing path", func(t *testing.T) {
		if _, err := Expand([]string{filepath.Join(root, "nope.png")}, ExpandOptions{}); err == nil {
			t.Error("expected error for missing path")
		}
	})
}
