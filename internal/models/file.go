package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/mediastore/mediastore-cli/internal/constants"
)

// FileType is the coarse kind of a catalog record.
type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypeVideo FileType = "video"
	FileTypeJSON  FileType = "json"
	FileTypeText  FileType = "text"
	FileTypeOther FileType = "other"
)

// ParseFileType maps a backend type label onto a FileType. Unknown or empty
// labels become FileTypeOther.
func ParseFileType(s string) FileType {
	switch FileType(strings.ToLower(strings.TrimSpace(s))) {
	case FileTypeImage:
		return FileTypeImage
	case FileTypeVideo:
		return FileTypeVideo
	case FileTypeJSON:
		return FileTypeJSON
	case FileTypeText:
		return FileTypeText
	default:
		return FileTypeOther
	}
}

// IsMedia reports whether the type is an image or a video.
func (t FileType) IsMedia() bool {
	return t == FileTypeImage || t == FileTypeVideo
}

// FileRecord is one entry of the catalog served by GET /files.
type FileRecord struct {
	ID        string     `json:"id,omitempty" yaml:"id,omitempty"`
	Name      string     `json:"name" yaml:"name"`
	Type      FileType   `json:"type" yaml:"type"`
	Category  string     `json:"category,omitempty" yaml:"category,omitempty"`
	Extension string     `json:"extension" yaml:"extension"`
	URL       string     `json:"url,omitempty" yaml:"url,omitempty"`
	Timestamp *Timestamp `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Score     float64    `json:"score" yaml:"score"`
}

// fileRecordWire is the loose shape the backend emits. Several drafts of the
// backend name the same fields differently.
type fileRecordWire struct {
	ID            json.RawMessage `json:"id"`
	Name          string          `json:"name"`
	Filename      string          `json:"filename"`
	Type          string          `json:"type"`
	Category      string          `json:"category"`
	Extension     string          `json:"extension"`
	URL           string          `json:"url"`
	CloudinaryURL string          `json:"cloudinary_url"`
	OnlineURL     string          `json:"online_url"`
	LocalURL      string          `json:"local_url"`
	ContentURL    string          `json:"content_url"`
	Timestamp     json.RawMessage `json:"timestamp"`
	Score         *float64        `json:"score"`
}

// UnmarshalJSON decodes a backend record and applies the catalog defaults:
// type falls back to other, extension to the name suffix, score to 100.
func (r *FileRecord) UnmarshalJSON(data []byte) error {
	var w fileRecordWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	name := w.Name
	if name == "" {
		name = w.Filename
	}

	rec := FileRecord{
		ID:        decodeID(w.ID),
		Name:      name,
		Type:      ParseFileType(w.Type),
		Category:  CanonicalCategory(w.Category),
		Extension: NormalizeExtension(w.Extension),
		URL:       firstNonEmpty(w.URL, w.CloudinaryURL, w.OnlineURL, w.LocalURL, w.ContentURL),
		Score:     constants.DefaultScore,
	}
	if rec.Extension == "" {
		rec.Extension = ExtensionFromName(name)
	}
	if w.Score != nil {
		rec.Score = *w.Score
	}
	if ts, ok := parseTimestampRaw(w.Timestamp); ok {
		rec.Timestamp = &ts
	}

	*r = rec
	return nil
}

// NormalizeExtension lowercases an extension and strips any leading dot.
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// ExtensionFromName derives an extension from a file name, or returns
// "unknown" when the name has none.
func ExtensionFromName(name string) string {
	ext := NormalizeExtension(path.Ext(name))
	if ext == "" {
		return constants.UnknownExtension
	}
	return ext
}

// CanonicalCategory maps a category label onto the spelling of a known
// category when they match case-insensitively ("NOSQL" -> "NoSQL").
// Unknown labels are returned trimmed but otherwise untouched.
func CanonicalCategory(category string) string {
	category = strings.TrimSpace(category)
	for _, known := range constants.DefaultCategories {
		if strings.EqualFold(category, known) {
			return known
		}
	}
	return category
}

func decodeID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Timestamp accepts either an ISO-8601 string or epoch seconds on the wire.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses the string forms the backend emits. Strings without a
// zone are taken as UTC.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{t}, nil
		}
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpoch(secs), nil
	}
	return Timestamp{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func fromEpoch(secs float64) Timestamp {
	whole := int64(secs)
	nanos := int64((secs - float64(whole)) * float64(time.Second))
	return Timestamp{time.Unix(whole, nanos).UTC()}
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	ts, ok := parseTimestampRaw(data)
	if !ok {
		return fmt.Errorf("unrecognized timestamp %s", string(data))
	}
	*t = ts
	return nil
}

// MarshalJSON always emits RFC 3339.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// MarshalYAML emits RFC 3339 for yaml.v3.
func (t Timestamp) MarshalYAML() (interface{}, error) {
	return t.UTC().Format(time.RFC3339), nil
}

// parseTimestampRaw is lenient: an absent or unparseable timestamp yields ok=false
// so a single odd record never fails the whole catalog.
func parseTimestampRaw(raw json.RawMessage) (Timestamp, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Timestamp{}, false
	}
	var secs float64
	if err := json.Unmarshal(raw, &secs); err == nil {
		return fromEpoch(secs), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return Timestamp{}, false
	}
	ts, err := ParseTimestamp(s)
	if err != nil {
		return Timestamp{}, false
	}
	return ts, true
}
