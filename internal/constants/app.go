package constants

import (
	"time"
)

// Backend defaults
const (
	// DefaultBaseURL is where the media storage backend listens in a local install.
	DefaultBaseURL = "http://127.0.0.1:8000"

	// Endpoint paths exposed by the backend.
	FilesPath  = "/files"
	UploadPath = "/upload"
	HealthPath = "/health"

	// UploadFormField is the multipart field name the backend reads the file from.
	UploadFormField = "file"

	// RequestIDHeader carries a per-request UUID so backend logs can be correlated.
	RequestIDHeader = "X-Request-ID"
)

// Catalog defaults
const (
	// MinSearchLength - queries shorter than this (in runes, after trimming)
	// clear the search instead of matching.
	MinSearchLength = 2

	// DefaultScore is applied to records that arrive without a score.
	DefaultScore = 100.0

	// StructuredExtension is the extension every SQL/NoSQL record carries.
	StructuredExtension = "json"

	// UnknownExtension is used when neither the record nor its name yields one.
	UnknownExtension = "unknown"
)

// Known categories as the backend labels them.
const (
	CategoryImages = "Images"
	CategoryVideos = "Videos"
	CategorySQL    = "SQL"
	CategoryNoSQL  = "NoSQL"
)

// DefaultCategories are the main categories tallied by the catalog counts.
var DefaultCategories = []string{CategoryImages, CategoryVideos, CategorySQL, CategoryNoSQL}

// DefaultGroupedCategories are backend-assigned categories whose membership does
// not depend on file extension.
var DefaultGroupedCategories = []string{CategorySQL, CategoryNoSQL}

// ImageExtensions and VideoExtensions mirror what the backend accepts as media.
var (
	ImageExtensions = []string{"png", "jpg", "jpeg", "gif", "bmp", "webp"}
	VideoExtensions = []string{"mp4", "mov", "avi", "mkv", "wmv"}
)

// MediaExtensions returns image extensions followed by video extensions.
func MediaExtensions() []string {
	exts := make([]string, 0, len(ImageExtensions)+len(VideoExtensions))
	exts = append(exts, ImageExtensions...)
	return append(exts, VideoExtensions...)
}

// HTTP timeouts
const (
	// HTTPDialTimeout - TCP connect timeout
	HTTPDialTimeout = 10 * time.Second

	// HTTPDialKeepAlive - TCP keep-alive interval
	HTTPDialKeepAlive = 30 * time.Second

	// HTTPIdleConnTimeout - how long idle pooled connections are kept
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPTLSHandshakeTimeout - TLS handshake timeout
	HTTPTLSHandshakeTimeout = 15 * time.Second

	// HTTPExpectContinueTimeout - wait for 100-continue before sending body
	HTTPExpectContinueTimeout = 1 * time.Second

	// DefaultRequestTimeout - overall timeout for catalog and health requests
	DefaultRequestTimeout = 30 * time.Second

	// ProxyWarmupTimeout - bound on the optional proxy warmup request
	ProxyWarmupTimeout = 15 * time.Second
)

// Retry configuration
const (
	// APIRetryMax - retries for idempotent GET requests through retryablehttp
	APIRetryMax = 3

	// APIRetryWaitMin / APIRetryWaitMax bound retryablehttp's backoff
	APIRetryWaitMin = 500 * time.Millisecond
	APIRetryWaitMax = 5 * time.Second

	// HealthMaxAttempts - attempts made by the health check
	HealthMaxAttempts = 3

	// RetryInitialDelay - initial delay before first retry (200ms)
	RetryInitialDelay = 200 * time.Millisecond

	// RetryMaxDelay - maximum delay between retries
	RetryMaxDelay = 5 * time.Second
)

// Event bus sizing
const (
	// EventBusDefaultBuffer - default per-subscriber channel buffer
	EventBusDefaultBuffer = 256

	// EventBusMaxBuffer - cap on requested buffer sizes
	EventBusMaxBuffer = 4096
)

// Log file rotation (lumberjack)
const (
	LogFileMaxSizeMB  = 10
	LogFileMaxBackups = 5
	LogFileMaxAgeDays = 30
)
