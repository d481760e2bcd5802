package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mediastore/mediastore-cli/internal/events"
	"github.com/mediastore/mediastore-cli/internal/logging"
	"github.com/mediastore/mediastore-cli/internal/models"
)

// Output formats for --output.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validateOutputFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("--output must be one of table, json, yaml, got %q", format)
	}
}

// writeStructured encodes v as JSON or YAML. It reports false for table
// output, which each command renders itself.
func writeStructured(w io.Writer, format string, v interface{}) (bool, error) {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}

// printRecords renders a catalog view as a fixed-width table.
func printRecords(w io.Writer, title string, records []models.FileRecord) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", len([]rune(title))))
	if len(records) == 0 {
		fmt.Fprintln(w, "No files found")
		return
	}

	fmt.Fprintf(w, "%-40s %-6s %-8s %-6s %s\n", "NAME", "TYPE", "CATEGORY", "EXT", "SCORE")
	for _, r := range records {
		category := r.Category
		if category == "" {
			category = "-"
		}
		fmt.Fprintf(w, "%-40s %-6s %-8s %-6s %.0f\n", truncateName(r.Name, 40), r.Type, category, r.Extension, r.Score)
	}
	fmt.Fprintf(w, "\n%d file(s)\n", len(records))
}

// printCounts renders the count table in sidebar order: all, JSON, then
// categories and extensions.
func printCounts(w io.Writer, counts models.CountTable) {
	fmt.Fprintf(w, "%-12s %d\n", "All", counts.All)
	fmt.Fprintf(w, "%-12s %d\n", "JSON", counts.JSON)

	fmt.Fprintln(w, "\nCategories:")
	for _, c := range counts.SortedCategories() {
		fmt.Fprintf(w, "  %-10s %d\n", c, counts.Categories[c])
	}

	fmt.Fprintln(w, "\nExtensions:")
	for _, e := range counts.SortedExtensions() {
		fmt.Fprintf(w, "  %-10s %d\n", e, counts.Extensions[e])
	}
}

func truncateName(name string, max int) string {
	r := []rune(name)
	if len(r) <= max {
		return name
	}
	return string(r[:max-3]) + "..."
}

// traceEvents logs every bus event at debug level. The returned stop function
// closes the bus and waits for the backlog to drain.
func traceEvents(bus *events.EventBus, log *logging.Logger) (stop func()) {
	ch := bus.SubscribeAll()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for ev := range ch {
			e := log.Debug().Str("event", string(ev.Type()))
			switch v := ev.(type) {
			case *events.CatalogEvent:
				e = e.Int("records", v.Records).Dur("elapsed", v.Duration).AnErr("error", v.Error)
			case *events.UploadFileEvent:
				e = e.Str("batch", v.BatchID).Int("index", v.Index).Str("file", v.Name).
					Str("category", v.Category).Str("extension", v.Extension).AnErr("error", v.Error)
			case *events.UploadBatchEvent:
				e = e.Str("batch", v.BatchID).Int("total", v.Total).
					Int("success", v.SuccessCount).Int("failed", v.FailedCount)
			case *events.ErrorEvent:
				e = e.Str("file", v.Name).AnErr("error", v.Error)
			}
			e.Msg("Event")
		}
	}()

	return func() {
		bus.Close()
		<-done
	}
}
