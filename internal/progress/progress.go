// Package progress provides a unified interface for upload progress reporting
// across terminals (progress bars), pipes (plain lines) and the event bus.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mediastore/mediastore-cli/internal/events"
)

// Reporter reports byte progress of a single transfer.
type Reporter interface {
	Start(total int64, description string)
	Update(current int64)
	Finish()
	Error(err error)
	SetDescription(desc string)
}

// CLIProgress implements progress reporting for a terminal using progressbar.
type CLIProgress struct {
	bar *progressbar.ProgressBar
	out io.Writer
}

// NewCLIProgress creates a new CLI progress reporter writing to out (stderr when nil).
func NewCLIProgress(out io.Writer) *CLIProgress {
	if out == nil {
		out = os.Stderr
	}
	return &CLIProgress{out: out}
}

// Start initializes the progress bar with total size and description.
// A negative total renders a spinner.
func (p *CLIProgress) Start(total int64, description string) {
	out := p.out
	p.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(out, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Update updates the progress bar to the current position.
func (p *CLIProgress) Update(current int64) {
	if p.bar != nil {
		_ = p.bar.Set64(current)
	}
}

// Finish completes the progress bar.
func (p *CLIProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// Error displays an error message.
func (p *CLIProgress) Error(err error) {
	if err != nil {
		fmt.Fprintf(p.out, "\nError: %v\n", err)
	}
}

// SetDescription updates the progress bar description.
func (p *CLIProgress) SetDescription(desc string) {
	if p.bar != nil {
		p.bar.Describe(desc)
	}
}

// EventProgress publishes progress of one batch file on the event bus.
type EventProgress struct {
	eventBus *events.EventBus
	name     string
	index    int
	count    int

	mu      sync.Mutex
	total   int64
	current int64
}

// NewEventProgress creates a reporter for file index (1-based) of count.
func NewEventProgress(eventBus *events.EventBus, name string, index, count int) *EventProgress {
	return &EventProgress{
		eventBus: eventBus,
		name:     name,
		index:    index,
		count:    count,
	}
}

// Start initializes progress tracking.
func (p *EventProgress) Start(total int64, description string) {
	p.mu.Lock()
	p.total = total
	p.current = 0
	p.mu.Unlock()
	p.publish(0, total, description)
}

// Update publishes progress update to event bus.
func (p *EventProgress) Update(current int64) {
	p.mu.Lock()
	p.current = current
	total := p.total
	p.mu.Unlock()
	p.publish(current, total, "")
}

// Finish publishes completion event.
func (p *EventProgress) Finish() {
	p.mu.Lock()
	total := p.total
	if total < 0 {
		total = p.current
	}
	p.mu.Unlock()
	p.publish(total, total, "")
}

// Error publishes error event.
func (p *EventProgress) Error(err error) {
	if err == nil || p.eventBus == nil {
		return
	}
	p.eventBus.Publish(&events.ErrorEvent{
		BaseEvent: events.BaseEvent{EventType: events.EventError, Time: time.Now()},
		Name:      p.name,
		Error:     err,
	})
}

// SetDescription updates the stage description.
func (p *EventProgress) SetDescription(desc string) {
	p.mu.Lock()
	current, total := p.current, p.total
	p.mu.Unlock()
	p.publish(current, total, desc)
}

func (p *EventProgress) publish(current, total int64, msg string) {
	if p.eventBus == nil {
		return
	}
	p.eventBus.Publish(&events.ProgressEvent{
		BaseEvent:    events.BaseEvent{EventType: events.EventProgress, Time: time.Now()},
		Name:         p.name,
		Index:        p.index,
		Total:        p.count,
		BytesCurrent: current,
		BytesTotal:   total,
		Message:      msg,
	})
}

// NoOpProgress is a progress reporter that does nothing (for background/silent operations).
type NoOpProgress struct{}

// NewNoOpProgress creates a new no-op progress reporter.
func NewNoOpProgress() *NoOpProgress {
	return &NoOpProgress{}
}

func (p *NoOpProgress) Start(total int64, description string) {}
func (p *NoOpProgress) Update(current int64) {}
func (p *NoOpProgress) Finish() {}
func (p *NoOpProgress) Error(err error) {}
func (p *NoOpProgress) SetDescription(desc string) {}

// ProgressReader wraps an io.Reader to report progress.
type ProgressReader struct {
	reader   io.Reader
	reporter Reporter
	total    int64
	current  int64
}

// NewProgressReader creates a new progress-reporting reader.
func NewProgressReader(reader io.Reader, total int64, reporter Reporter) *ProgressReader {
	return &ProgressReader{
		reader:   reader,
		reporter: reporter,
		total:    total,
	}
}

// Read implements io.Reader interface with progress reporting.
func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.current += int64(n)
		pr.reporter.Update(pr.current)
	}
	return n, err
}

// Current returns the number of bytes read so far.
func (pr *ProgressReader) Current() int64 {
	return pr.current
}

// ReporterFactory builds the Reporter for one file of a batch.
type ReporterFactory func(index, total int, name string) Reporter

// ReporterBatch adapts a per-file Reporter into a BatchReporter. Result lines
// are written to out.
type ReporterBatch struct {
	out     io.Writer
	factory ReporterFactory
	mu      sync.Mutex
}

// NewReporterBatch creates a batch reporter that builds one Reporter per file.
// out may be nil to suppress result lines.
func NewReporterBatch(out io.Writer, factory ReporterFactory) *ReporterBatch {
	return &ReporterBatch{out: out, factory: factory}
}

// StartFile implements BatchReporter.
func (b *ReporterBatch) StartFile(index, total int, name string, size int64) FileTracker {
	return &reporterTracker{
		batch:    b,
		reporter: b.factory(index, total, name),
		label:    fmt.Sprintf("[%d/%d] %s", index, total, truncatePath(name, 2)),
		size:     size,
	}
}

// Writer implements BatchReporter.
func (b *ReporterBatch) Writer() io.Writer {
	if b.out == nil {
		return io.Discard
	}
	return b.out
}

// Wait implements BatchReporter.
func (b *ReporterBatch) Wait() {}

func (b *ReporterBatch) println(line string) {
	if b.out == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintln(b.out, line)
}

type reporterTracker struct {
	batch    *ReporterBatch
	reporter Reporter
	label    string
	size     int64
	retries  int
}

func (t *reporterTracker) Wrap(r io.Reader) io.Reader {
	desc := t.label
	if t.retries > 0 {
		desc = fmt.Sprintf("%s (retry %d)", t.label, t.retries)
	}
	t.reporter.Start(t.size, desc)
	return NewProgressReader(r, t.size, t.reporter)
}

func (t *reporterTracker) SetRetry(count int) {
	t.retries = count
	t.reporter.SetDescription(fmt.Sprintf("%s (retry %d)", t.label, count))
}

func (t *reporterTracker) Complete(result string, err error) {
	if err != nil {
		t.reporter.Error(err)
		t.batch.println(fmt.Sprintf("✗ %s: %v", t.label, err))
		return
	}
	t.reporter.Finish()
	t.batch.println(fmt.Sprintf("✓ %s → %s", t.label, result))
}

// NoOpBatch discards all progress.
type NoOpBatch struct{}

// NewNoOpBatch creates a silent batch reporter.
func NewNoOpBatch() NoOpBatch { return NoOpBatch{} }

func (NoOpBatch) StartFile(index, total int, name string, size int64) FileTracker {
	return noOpTracker{}
}
func (NoOpBatch) Writer() io.Writer { return io.Discard }
func (NoOpBatch) Wait() {}

type noOpTracker struct{}

func (noOpTracker) Wrap(r io.Reader) io.Reader { return r }
func (noOpTracker) SetRetry(int) {}
func (noOpTracker) Complete(string, error) {}

// NewEventBatch reports every file on the event bus and nowhere else.
func NewEventBatch(bus *events.EventBus) *ReporterBatch {
	return NewReporterBatch(nil, func(index, total int, name string) Reporter {
		return NewEventProgress(bus, name, index, total)
	})
}

// NewBatchReporter picks a reporter for a batch of total files written to out:
// a single progressbar for one file on a terminal, mpb bars for several, and
// plain lines when out is not a terminal.
func NewBatchReporter(total int, out io.Writer) BatchReporter {
	if out == nil {
		out = os.Stderr
	}
	if IsTerminal(out) && total == 1 {
		return NewReporterBatch(out, func(int, int, string) Reporter {
			return NewCLIProgress(out)
		})
	}
	return NewBatchUI(out)
}
