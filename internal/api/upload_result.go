package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/mediastore/mediastore-cli/internal/constants"
	"github.com/mediastore/mediastore-cli/internal/models"
)

// ResultKind tags the variants of UploadResult.
type ResultKind string

const (
	KindMedia      ResultKind = "media"
	KindStructured ResultKind = "structured"
	KindArchive    ResultKind = "archive"
)

// UploadResult is the decoded body of a successful POST /upload. The set of
// implementations is closed: *MediaResult, *StructuredResult, *ArchiveResult.
type UploadResult interface {
	Kind() ResultKind
	// Classification returns the category and extension the upload landed in.
	Classification() (category, extension string)
	isUploadResult()
}

// MediaResult is an image or video stored by the backend.
type MediaResult struct {
	Filename  string `json:"filename" yaml:"filename"`
	Category  string `json:"category" yaml:"category"`
	Extension string `json:"extension" yaml:"extension"`
	URL       string `json:"url,omitempty" yaml:"url,omitempty"`
}

func (*MediaResult) Kind() ResultKind { return KindMedia }
func (*MediaResult) isUploadResult()  {}

func (r *MediaResult) Classification() (string, string) {
	return r.Category, r.Extension
}

// StructuredResult is a JSON document the backend routed to SQL or NoSQL storage.
type StructuredResult struct {
	StorageType  string `json:"storage_type" yaml:"storage_type"`
	Category     string `json:"category" yaml:"category"`
	StoredName   string `json:"stored_name,omitempty" yaml:"stored_name,omitempty"`
	OriginalName string `json:"original_name,omitempty" yaml:"original_name,omitempty"`
	Duplicate    bool   `json:"duplicate,omitempty" yaml:"duplicate,omitempty"`
}

func (*StructuredResult) Kind() ResultKind { return KindStructured }
func (*StructuredResult) isUploadResult()  {}

// Classification always reports the json extension.
func (r *StructuredResult) Classification() (string, string) {
	return r.Category, constants.StructuredExtension
}

// ArchiveResult is a ZIP upload the backend unpacked into several media files.
type ArchiveResult struct {
	Entries []MediaResult `json:"entries" yaml:"entries"`
}

func (*ArchiveResult) Kind() ResultKind { return KindArchive }
func (*ArchiveResult) isUploadResult()  {}

// Classification follows the last entry of the archive.
func (r *ArchiveResult) Classification() (string, string) {
	if len(r.Entries) == 0 {
		return "", ""
	}
	return r.Entries[len(r.Entries)-1].Classification()
}

// CategoryForStorageType maps a backend storage label to a catalog category.
// Matching is case-insensitive; "mongo" and "nosql" are checked before "sql"
// since "nosql" contains it.
func CategoryForStorageType(storageType string) (string, bool) {
	s := strings.ToLower(storageType)
	switch {
	case strings.Contains(s, "mongo"), strings.Contains(s, "nosql"):
		return constants.CategoryNoSQL, true
	case strings.Contains(s, "sql"):
		return constants.CategorySQL, true
	default:
		return "", false
	}
}

// uploadWire is every field any backend revision puts in an upload response.
type uploadWire struct {
	SavedFile   json.RawMessage   `json:"saved_file"`
	SavedFiles  []json.RawMessage `json:"saved_files"`
	Details     *structuredWire   `json:"details"`
	StorageType string            `json:"storage_type"`
	mediaWire
}

type structuredWire struct {
	StorageType  string `json:"storage_type"`
	StoredName   string `json:"stored_name"`
	OriginalName string `json:"original_name"`
	Duplicate    bool   `json:"duplicate"`
}

type mediaWire struct {
	Filename     string `json:"filename"`
	Category     string `json:"category"`
	Extension    string `json:"extension"`
	PublicID     string `json:"public_id"`
	ResourceType string `json:"resource_type"`
	Format       string `json:"format"`
	SecureURL    string `json:"secure_url"`
	URL          string `json:"url"`
	OnlineURL    string `json:"online_url"`
}

// DecodeUploadResult normalizes a 2xx upload response body into one of the
// UploadResult variants. Shapes are tried in order: saved_file, storage_type
// (nested under details or top level), saved_files, then a bare media object.
func DecodeUploadResult(body []byte) (UploadResult, error) {
	var w uploadWire
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedResponse, err)
	}

	if len(w.SavedFile) > 0 && !bytes.Equal(bytes.TrimSpace(w.SavedFile), []byte("null")) {
		var m mediaWire
		if err := json.Unmarshal(w.SavedFile, &m); err != nil {
			return nil, fmt.Errorf("%w: saved_file: %v", ErrUnrecognizedResponse, err)
		}
		if media, ok := m.toMedia(); ok {
			return media, nil
		}
		return nil, fmt.Errorf("%w: saved_file without category", ErrUnrecognizedResponse)
	}

	if sw := w.structured(); sw != nil {
		category, ok := CategoryForStorageType(sw.StorageType)
		if !ok {
			return nil, fmt.Errorf("%w: storage_type %q", ErrUnrecognizedResponse, sw.StorageType)
		}
		return &StructuredResult{
			StorageType:  sw.StorageType,
			Category:     category,
			StoredName:   sw.StoredName,
			OriginalName: sw.OriginalName,
			Duplicate:    sw.Duplicate,
		}, nil
	}

	if w.SavedFiles != nil {
		archive := &ArchiveResult{}
		for _, raw := range w.SavedFiles {
			if entry, ok := decodeArchiveEntry(raw); ok {
				archive.Entries = append(archive.Entries, *entry)
			}
		}
		if len(archive.Entries) == 0 {
			return nil, fmt.Errorf("%w: archive contained no media", ErrUnrecognizedResponse)
		}
		return archive, nil
	}

	// A bare top-level object must name its category or be a Cloudinary asset;
	// a lone filename is not a classification.
	if w.Category != "" || w.PublicID != "" {
		if media, ok := w.mediaWire.toMedia(); ok {
			return media, nil
		}
	}

	return nil, ErrUnrecognizedResponse
}

func (w *uploadWire) structured() *structuredWire {
	if w.Details != nil && w.Details.StorageType != "" {
		return w.Details
	}
	if w.StorageType != "" {
		return &structuredWire{StorageType: w.StorageType}
	}
	return nil
}

// decodeArchiveEntry accepts either a media object or a bare stored path.
func decodeArchiveEntry(raw json.RawMessage) (*MediaResult, bool) {
	var p string
	if err := json.Unmarshal(raw, &p); err == nil {
		m := mediaWire{Filename: path.Base(strings.ReplaceAll(p, "\\", "/"))}
		return m.toMedia()
	}
	var m mediaWire
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return m.toMedia()
}

// toMedia resolves category and extension from whichever fields are present.
// A media result needs both.
func (m mediaWire) toMedia() (*MediaResult, bool) {
	name := m.Filename
	if name == "" {
		name = m.PublicID
	}

	ext := models.NormalizeExtension(m.Extension)
	if ext == "" {
		ext = models.NormalizeExtension(m.Format)
	}
	if ext == "" && name != "" {
		if e := models.ExtensionFromName(name); e != constants.UnknownExtension {
			ext = e
		}
	}

	category := models.CanonicalCategory(m.Category)
	if category == "" {
		category = categoryForResourceType(m.ResourceType)
	}
	if category == "" {
		category = categoryForExtension(ext)
	}

	if category == "" || ext == "" {
		return nil, false
	}

	url := m.SecureURL
	if url == "" {
		url = m.URL
	}
	if url == "" {
		url = m.OnlineURL
	}

	return &MediaResult{
		Filename:  name,
		Category:  category,
		Extension: ext,
		URL:       url,
	}, true
}

func categoryForResourceType(resourceType string) string {
	switch strings.ToLower(resourceType) {
	case "image":
		return constants.CategoryImages
	case "video":
		return constants.CategoryVideos
	default:
		return ""
	}
}

func categoryForExtension(ext string) string {
	for _, e := range constants.ImageExtensions {
		if e == ext {
			return constants.CategoryImages
		}
	}
	for _, e := range constants.VideoExtensions {
		if e == ext {
			return constants.CategoryVideos
		}
	}
	return ""
}
