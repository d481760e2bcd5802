package filter

import (
	"reflect"
	"testing"

	"github.com/mediastore/mediastore-cli/internal/models"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		path string
		want bool
	}{
		{"empty config", Config{}, "anything.bin", true},
		{"include match", Config{Include: []string{"*.png"}}, "cat.png", true},
		{"include on base name", Config{Include: []string{"*.png"}}, "albums/cat.png", true},
		{"include miss", Config{Include: []string{"*.png"}}, "cat.jpg", false},
		{"exclude wins", Config{Include: []string{"*.png"}, Exclude: []string{"draft*"}}, "draft-cat.png", false},
		{"search all terms", Config{Search: []string{"CAT", "final"}}, "cat_final.png", true},
		{"search missing term", Config{Search: []string{"cat", "final"}}, "cat_v1.png", false},
		{"path double star prefix", Config{Paths: []string{"**/cats/*.png"}}, "albums/2024/cats/tom.png", true},
		{"path double star suffix", Config{Paths: []string{"albums/**"}}, "albums/2024/x.mp4", true},
		{"path double star middle", Config{Paths: []string{"albums/**/x.mp4"}}, "albums/a/b/x.mp4", true},
		{"path miss", Config{Paths: []string{"docs/*.json"}}, "albums/x.json", false},
		{"path absolute", Config{Paths: []string{"**/cats/*.png"}}, "/home/me/albums/cats/tom.png", true},
		{"path star stays in segment", Config{Paths: []string{"albums/*.mp4"}}, "albums/2024/x.mp4", false},
		{"path and include combine", Config{Paths: []string{"albums/**"}, Exclude: []string{"*.tmp"}}, "albums/a/b.tmp", false},
		{"malformed glob never matches", Config{Include: []string{"[bad"}}, "cat.png", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Match(tt.path); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestApplyToRecords(t *testing.T) {
	records := []models.FileRecord{
		{Name: "cat.png", Type: models.FileTypeImage, Extension: "png"},
		{Name: "orders.json", Type: models.FileTypeJSON, Extension: "json"},
		{Name: "dog.png", Type: models.FileTypeImage, Extension: "png"},
	}

	got := ApplyToRecords(records, Config{Include: []string{"*.png"}, Exclude: []string{"dog*"}})
	if len(got) != 1 || got[0].Name != "cat.png" {
		t.Errorf("ApplyToRecords = %v, want [cat.png]", got)
	}

	if all := ApplyToRecords(records, Config{}); len(all) != 3 {
		t.Errorf("empty config should keep all records, got %d", len(all))
	}
	if records[1].Name != "orders.json" {
		t.Error("input slice was modified")
	}
}

func TestApplyToPaths(t *testing.T) {
	paths := []string{"a/cat.png", "a/notes.txt", "b/clip.mp4"}
	got := ApplyToPaths(paths, Config{Include: []string{"*.png", "*.mp4"}})
	want := []string{"a/cat.png", "b/clip.mp4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ApplyToPaths = %v, want %v", got, want)
	}
}
