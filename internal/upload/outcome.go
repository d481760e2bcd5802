package upload

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mediastore/mediastore-cli/internal/api"
	"github.com/mediastore/mediastore-cli/internal/models"
	ustrings "github.com/mediastore/mediastore-cli/internal/util/strings"
)

// Status summarizes a batch.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailure Status = "failure"
)

// FileResult is the outcome of one file. Exactly one of Result and Err is set.
type FileResult struct {
	Index    int // 1-based
	Name     string
	Result   api.UploadResult
	Err      error
	Error    string // Err rendered for output
	Attempts int
	Duration time.Duration
}

// fileResultWire is the encoded form of FileResult. It adds the result kind,
// which the interface value alone does not carry.
type fileResultWire struct {
	Index    int              `json:"index" yaml:"index"`
	Name     string           `json:"name" yaml:"name"`
	Kind     api.ResultKind   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Result   api.UploadResult `json:"result,omitempty" yaml:"result,omitempty"`
	Error    string           `json:"error,omitempty" yaml:"error,omitempty"`
	Attempts int              `json:"attempts" yaml:"attempts"`
	Duration time.Duration    `json:"duration" yaml:"duration"`
}

func (r FileResult) wire() fileResultWire {
	w := fileResultWire{
		Index:    r.Index,
		Name:     r.Name,
		Result:   r.Result,
		Error:    r.Error,
		Attempts: r.Attempts,
		Duration: r.Duration,
	}
	if r.Result != nil {
		w.Kind = r.Result.Kind()
	}
	return w
}

// MarshalJSON encodes the result with its kind.
func (r FileResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.wire())
}

// MarshalYAML encodes the result with its kind.
func (r FileResult) MarshalYAML() (interface{}, error) {
	return r.wire(), nil
}

// OK reports whether the file was stored and classified.
func (r FileResult) OK() bool { return r.Err == nil && r.Result != nil }

// Landing returns "Category/ext" for a stored file.
func (r FileResult) Landing() string {
	if r.Result == nil {
		return ""
	}
	category, ext := r.Result.Classification()
	return category + "/" + ext
}

// Outcome is the aggregate result of one UploadBatch call. LastCategory and
// LastExtension come from the last file that succeeded, not from every success.
type Outcome struct {
	BatchID       string        `json:"batch_id" yaml:"batch_id"`
	SuccessCount  int           `json:"success_count" yaml:"success_count"`
	FailedCount   int           `json:"failed_count" yaml:"failed_count"`
	LastCategory  string        `json:"last_category,omitempty" yaml:"last_category,omitempty"`
	LastExtension string        `json:"last_extension,omitempty" yaml:"last_extension,omitempty"`
	Files         []FileResult  `json:"files" yaml:"files"`
	Reloaded      bool          `json:"reloaded" yaml:"reloaded"`
	ReloadErr     error         `json:"-" yaml:"-"`
	Duration      time.Duration `json:"duration" yaml:"duration"`
}

// Total is the number of files attempted or skipped.
func (o *Outcome) Total() int {
	return o.SuccessCount + o.FailedCount
}

// Status classifies the batch.
func (o *Outcome) Status() Status {
	switch {
	case o.FailedCount == 0:
		return StatusSuccess
	case o.SuccessCount == 0:
		return StatusFailure
	default:
		return StatusPartial
	}
}

// Message is the one-line summary shown to the user.
func (o *Outcome) Message() string {
	switch o.Status() {
	case StatusSuccess:
		return fmt.Sprintf("%s uploaded successfully", ustrings.CountNoun(o.SuccessCount, "file"))
	case StatusPartial:
		return fmt.Sprintf("%d uploaded, %d failed", o.SuccessCount, o.FailedCount)
	default:
		return fmt.Sprintf("Upload failed: %s failed", ustrings.CountNoun(o.FailedCount, "file"))
	}
}

// Navigation is the filter to show after the batch: the last successful
// category and extension, or the default view when nothing succeeded.
func (o *Outcome) Navigation() models.FilterState {
	if o.SuccessCount == 0 || o.LastCategory == "" {
		return models.DefaultFilterState()
	}
	return models.FilterState{
		Type:      models.FilterAll,
		Category:  o.LastCategory,
		Extension: o.LastExtension,
	}.Normalize()
}

// Failures returns the failed files in input order.
func (o *Outcome) Failures() []FileResult {
	var out []FileResult
	for _, f := range o.Files {
		if !f.OK() {
			out = append(out, f)
		}
	}
	return out
}

func (o *Outcome) record(r FileResult) {
	if r.Err != nil {
		r.Error = r.Err.Error()
		o.FailedCount++
	} else {
		o.SuccessCount++
		o.LastCategory, o.LastExtension = r.Result.Classification()
	}
	o.Files = append(o.Files, r)
}
