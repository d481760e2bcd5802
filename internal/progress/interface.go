package progress

import "io"

// BatchReporter shows progress for a sequential upload batch, one file at a
// time. Implementations: BatchUI (mpb bars or plain lines), ReporterBatch
// (a Reporter per file, e.g. a progressbar or the event bus) and NoOp.
type BatchReporter interface {
	// StartFile announces file index (1-based) of total and returns its tracker.
	// size is -1 when unknown.
	StartFile(index, total int, name string, size int64) FileTracker

	// Writer returns an io.Writer that safely outputs above any progress bars.
	Writer() io.Writer

	// Wait blocks until all bars have finished rendering.
	Wait()
}

// FileTracker follows one file of a batch.
type FileTracker interface {
	// Wrap returns a reader that reports bytes read from r. Each call starts
	// counting from zero again, so a retried upload rewinds the bar.
	Wrap(r io.Reader) io.Reader

	// SetRetry marks the file as being retried.
	SetRetry(count int)

	// Complete finishes the file. result describes where it landed
	// (e.g. "Images/png") and is ignored when err is set.
	Complete(result string, err error)
}
