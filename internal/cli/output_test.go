package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediastore/mediastore-cli/internal/events"
	"github.com/mediastore/mediastore-cli/internal/logging"
	"github.com/mediastore/mediastore-cli/internal/models"
)

func TestPrintCounts(t *testing.T) {
	var buf bytes.Buffer
	printCounts(&buf, models.CountTable{
		All:        4,
		JSON:       1,
		Categories: map[string]int{"Videos": 1, "Images": 2},
		Extensions: map[string]int{"png": 2, "mp4": 1},
	})

	out := buf.String()
	assert.Contains(t, out, "All          4")
	assert.Contains(t, out, "JSON         1")
	assert.Less(t, strings.Index(out, "Images"), strings.Index(out, "Videos"), "categories are sorted")
	assert.Less(t, strings.Index(out, "mp4"), strings.Index(out, "png"), "extensions are sorted")
}

func TestPrintRecordsEmpty(t *testing.T) {
	var buf bytes.Buffer
	printRecords(&buf, "Images · PNG", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Images · PNG", lines[0])
	assert.Equal(t, strings.Repeat("=", 12), lines[1])
	assert.Equal(t, "No files found", lines[2])
}

func TestTruncateName(t *testing.T) {
	assert.Equal(t, "short.png", truncateName("short.png", 40))
	assert.Equal(t, "abcdefg...", truncateName("abcdefghijklmnop", 10))
	assert.Equal(t, "ééééééé...", truncateName(strings.Repeat("é", 20), 10))
}

func TestValidateOutputFormat(t *testing.T) {
	for _, f := range []string{"table", "json", "yaml"} {
		assert.NoError(t, validateOutputFormat(f))
	}
	assert.Error(t, validateOutputFormat("csv"))
}

func TestTraceEvents(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)
	logging.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer
	log := logging.NewLogger(logging.Options{Console: &buf})
	bus := events.NewEventBus(0)
	stop := traceEvents(bus, log)

	bus.PublishCatalog(0, time.Millisecond, errors.New("connection refused"))
	bus.PublishUploadFile("batch-1", 1, 1, "cat.png", "Images", "png", nil)
	stop()

	out := buf.String()
	assert.Contains(t, out, "catalog_failed")
	assert.Contains(t, out, "connection refused")
	assert.Contains(t, out, "upload_file_completed")
	assert.Contains(t, out, "cat.png")
}
