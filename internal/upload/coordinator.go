package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/mediastore/mediastore-cli/internal/api"
	"github.com/mediastore/mediastore-cli/internal/constants"
	"github.com/mediastore/mediastore-cli/internal/events"
	"github.com/mediastore/mediastore-cli/internal/http"
	"github.com/mediastore/mediastore-cli/internal/logging"
	"github.com/mediastore/mediastore-cli/internal/models"
	"github.com/mediastore/mediastore-cli/internal/notify"
	"github.com/mediastore/mediastore-cli/internal/progress"
	"github.com/mediastore/mediastore-cli/internal/validation"
)

// ErrNoFiles is returned by UploadBatch for an empty selection. Nothing is sent.
var ErrNoFiles = errors.New("no files selected for upload")

// Uploader sends one file. open may be called more than once per request
// when the backend redirects. *api.Client implements it.
type Uploader interface {
	UploadFrom(ctx context.Context, name string, open api.BodyOpener, size int64) (api.UploadResult, error)
}

// Reloader refreshes the catalog after a batch. *catalog.Store implements it.
type Reloader interface {
	LoadAll(ctx context.Context) ([]models.FileRecord, error)
}

// Coordinator uploads files sequentially and aggregates the outcome.
type Coordinator struct {
	uploader   Uploader
	reloader   Reloader
	reporter   progress.BatchReporter
	bus        *events.EventBus
	notifier   *notify.Notifier
	logger     *logging.Logger
	maxRetries int
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithReporter shows per-file progress. Defaults to no output.
func WithReporter(r progress.BatchReporter) Option {
	return func(c *Coordinator) { c.reporter = r }
}

// WithEventBus publishes upload events on bus.
func WithEventBus(bus *events.EventBus) Option {
	return func(c *Coordinator) { c.bus = bus }
}

// WithNotifier sends a desktop notification when a batch ends.
func WithNotifier(n *notify.Notifier) Option {
	return func(c *Coordinator) { c.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithMaxRetries retries a file up to n more times on network and 5xx
// failures. Client errors and unrecognized responses are never retried.
func WithMaxRetries(n int) Option {
	return func(c *Coordinator) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// NewCoordinator creates a coordinator. reloader may be nil to skip the
// post-batch catalog reload.
func NewCoordinator(uploader Uploader, reloader Reloader, opts ...Option) *Coordinator {
	c := &Coordinator{
		uploader: uploader,
		reloader: reloader,
		reporter: progress.NewNoOpBatch(),
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.reporter == nil {
		c.reporter = progress.NewNoOpBatch()
	}
	if c.logger == nil {
		c.logger = logging.NewNopLogger()
	}
	return c
}

// UploadBatch uploads files in order, one request at a time.
//
// A failed file is recorded and the batch moves on. When ctx is cancelled the
// file in flight finishes and every file not yet started is recorded as failed
// with the context error. If at least one file succeeded the catalog is
// reloaded; a reload failure is kept in Outcome.ReloadErr and does not change
// the counts.
func (c *Coordinator) UploadBatch(ctx context.Context, files []LocalFile) (*Outcome, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	start := time.Now()
	total := len(files)
	outcome := &Outcome{
		BatchID: uuid.New().String(),
		Files:   make([]FileResult, 0, total),
	}

	c.logger.Info().Str("batch", outcome.BatchID).Int("files", total).Msg("Starting upload batch")
	if c.bus != nil {
		c.bus.PublishUploadBatch(events.EventUploadStarted, outcome.BatchID, total, 0, 0, "", 0)
	}

	for i, f := range files {
		index := i + 1
		var res FileResult
		if err := ctx.Err(); err != nil {
			res = FileResult{Index: index, Name: f.DisplayName(), Err: fmt.Errorf("skipped: %w", err)}
		} else {
			res = c.uploadOne(ctx, f, index, total)
		}
		outcome.record(res)
		c.publishFile(outcome.BatchID, total, res)
	}
	c.reporter.Wait()

	if outcome.SuccessCount > 0 && c.reloader != nil {
		// The batch already happened; reload even if the caller gave up
		if _, err := c.reloader.LoadAll(context.WithoutCancel(ctx)); err != nil {
			outcome.ReloadErr = err
			c.logger.Warn().Err(err).Str("batch", outcome.BatchID).Msg("Catalog reload after upload failed")
		} else {
			outcome.Reloaded = true
		}
	}

	outcome.Duration = time.Since(start)
	msg := outcome.Message()

	ev := c.logger.Info()
	if outcome.FailedCount > 0 {
		ev = c.logger.Warn()
	}
	ev.Str("batch", outcome.BatchID).
		Int("success", outcome.SuccessCount).
		Int("failed", outcome.FailedCount).
		Dur("elapsed", outcome.Duration).
		Msg(msg)

	if c.bus != nil {
		c.bus.PublishUploadBatch(events.EventUploadCompleted, outcome.BatchID, total,
			outcome.SuccessCount, outcome.FailedCount, msg, outcome.Duration)
	}
	if c.notifier != nil {
		c.notifier.UploadBatchComplete(outcome.SuccessCount, outcome.FailedCount, msg)
	}

	return outcome, nil
}

func (c *Coordinator) uploadOne(ctx context.Context, f LocalFile, index, total int) FileResult {
	name := f.DisplayName()
	res := FileResult{Index: index, Name: name}
	start := time.Now()
	tracker := c.reporter.StartFile(index, total, f.Name, f.Size)

	fail := func(err error) FileResult {
		res.Err = err
		res.Duration = time.Since(start)
		tracker.Complete("", err)
		c.logger.Warn().Err(err).Str("file", name).Int("index", index).Msg("Upload failed")
		return res
	}

	if err := validation.ValidateUploadName(name); err != nil {
		return fail(err)
	}

	// The request itself is not cut off by cancellation, only further retries
	reqCtx := context.WithoutCancel(ctx)

	cfg := http.Config{
		MaxRetries:   c.maxRetries + 1,
		InitialDelay: constants.RetryInitialDelay,
		MaxDelay:     constants.RetryMaxDelay,
		OnRetry: func(attempt int, err error, errType http.ErrorType) {
			tracker.SetRetry(attempt)
			c.logger.Warn().Err(err).
				Str("file", name).
				Int("attempt", attempt).
				Str("class", http.ErrorTypeName(errType)).
				Msg("Retrying upload")
		},
	}

	// Every send, including a redirected one, restarts from the first byte
	open := func() (io.ReadCloser, error) {
		body, err := f.Open()
		if err != nil {
			return nil, err
		}
		return trackedBody{Reader: tracker.Wrap(body), Closer: body}, nil
	}

	var result api.UploadResult
	err := http.ExecuteWithRetry(ctx, cfg, func() error {
		res.Attempts++
		var err error
		result, err = c.uploader.UploadFrom(reqCtx, f.Name, open, f.Size)
		return err
	})

	if err == nil && result == nil {
		err = api.ErrUnrecognizedResponse
	}
	if err != nil {
		return fail(err)
	}

	res.Duration = time.Since(start)
	res.Result = result
	tracker.Complete(res.Landing(), nil)
	c.logger.Debug().Str("file", name).Str("landing", res.Landing()).Dur("elapsed", res.Duration).Msg("Upload stored")
	return res
}

type trackedBody struct {
	io.Reader
	io.Closer
}

func (c *Coordinator) publishFile(batchID string, total int, r FileResult) {
	if c.bus == nil {
		return
	}
	var category, ext string
	if r.Result != nil {
		category, ext = r.Result.Classification()
	}
	c.bus.PublishUploadFile(batchID, r.Index, total, r.Name, category, ext, r.Err)
}
