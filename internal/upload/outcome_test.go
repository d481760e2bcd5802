package upload

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mediastore/mediastore-cli/internal/api"
	"github.com/mediastore/mediastore-cli/internal/localfs"
	"github.com/mediastore/mediastore-cli/internal/models"
)

func TestOutcomeMessage(t *testing.T) {
	tests := []struct {
		success, failed int
		status          Status
		message         string
	}{
		{1, 0, StatusSuccess, "1 file uploaded successfully"},
		{3, 0, StatusSuccess, "3 files uploaded successfully"},
		{2, 1, StatusPartial, "2 uploaded, 1 failed"},
		{0, 1, StatusFailure, "Upload failed: 1 file failed"},
		{0, 4, StatusFailure, "Upload failed: 4 files failed"},
	}

	for _, tt := range tests {
		o := &Outcome{SuccessCount: tt.success, FailedCount: tt.failed}
		assert.Equal(t, tt.status, o.Status(), "%d/%d", tt.success, tt.failed)
		assert.Equal(t, tt.message, o.Message(), "%d/%d", tt.success, tt.failed)
		assert.Equal(t, tt.success+tt.failed, o.Total())
	}
}

func TestOutcomeRecord(t *testing.T) {
	o := &Outcome{}
	o.record(FileResult{Index: 1, Name: "a.png", Result: &api.MediaResult{Category: "Images", Extension: "png"}})
	o.record(FileResult{Index: 2, Name: "b.json", Result: &api.StructuredResult{Category: "NoSQL"}})
	o.record(FileResult{Index: 3, Name: "c.txt", Err: errors.New("rejected")})

	assert.Equal(t, 2, o.SuccessCount)
	assert.Equal(t, 1, o.FailedCount)
	assert.Equal(t, "NoSQL", o.LastCategory)
	assert.Equal(t, "json", o.LastExtension)
	assert.Equal(t, "rejected", o.Files[2].Error)
	assert.Equal(t, "NoSQL/json", o.Files[1].Landing())

	failures := o.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "c.txt", failures[0].Name)

	assert.Equal(t, models.FilterState{Type: "all", Category: "NoSQL", Extension: "json"}, o.Navigation())
}

func TestFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cat.png")
	require.NoError(t, os.WriteFile(path, []byte("meow"), 0644))

	f, err := FromPath(path)
	require.NoError(t, err)
	assert.Equal(t, int64(4), f.Size)
	assert.Equal(t, "cat.png", f.DisplayName())

	rc, err := f.Open()
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "meow", string(data))

	_, err = FromPath(dir)
	assert.ErrorContains(t, err, "is a directory")

	_, err = FromPath(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
}

func TestFromEntries(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0644))
	}
	entries, err := localfs.Expand([]string{dir}, localfs.ExpandOptions{Recursive: true})
	require.NoError(t, err)

	files := FromEntries(entries)
	require.Len(t, files, 2)
	assert.Equal(t, "a.json", files[0].DisplayName())
	assert.Equal(t, int64(len("a.json")), files[0].Size)
}

func TestFileResultEncodesKind(t *testing.T) {
	files := []FileResult{
		{Index: 1, Name: "cat.png", Result: &api.MediaResult{Filename: "cat.png", Category: "Images", Extension: "png"}},
		{Index: 2, Name: "orders.json", Result: &api.StructuredResult{StorageType: "SQL", Category: "SQL"}},
		{Index: 3, Name: "pack.zip", Result: &api.ArchiveResult{Entries: []api.MediaResult{{Filename: "a.png"}}}},
		{Index: 4, Name: "bad.exe", Err: errors.New("rejected"), Error: "rejected"},
	}

	data, err := json.Marshal(files)
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 4)
	assert.Equal(t, "media", decoded[0]["kind"])
	assert.Equal(t, "structured", decoded[1]["kind"])
	assert.Equal(t, "archive", decoded[2]["kind"])
	assert.NotContains(t, decoded[3], "kind")
	assert.Equal(t, "rejected", decoded[3]["error"])

	out, err := yaml.Marshal(files[1])
	require.NoError(t, err)
	assert.Contains(t, string(out), "kind: structured")
	assert.Contains(t, string(out), "storage_type: SQL")
}
