package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"
)

// BatchUI renders one mpb bar per file when out is a terminal and falls back
// to one line per event otherwise.
type BatchUI struct {
	progress   *mpb.Progress
	out        io.Writer
	isTerminal bool
	completed  atomic.Int32
	failed     atomic.Int32
}

// FileBar follows one file of the batch.
type FileBar struct {
	bar       *mpb.Bar
	ui        *BatchUI
	index     int
	total     int
	name      string
	size      int64
	retries   atomic.Int32
	startTime time.Time
}

// NewBatchUI creates a batch UI writing to out. Bars are only drawn when out
// is a terminal.
func NewBatchUI(out io.Writer) *BatchUI {
	if out == nil {
		out = os.Stderr
	}
	isTerminal := IsTerminal(out)

	var p *mpb.Progress
	if isTerminal {
		if f, ok := out.(*os.File); ok {
			enableANSIOnWindows(f)
		}
		p = mpb.New(
			mpb.WithOutput(out),
			mpb.WithRefreshRate(300*time.Millisecond),
			mpb.WithWidth(100),
		)
	}

	return &BatchUI{
		progress:   p,
		out:        out,
		isTerminal: isTerminal,
	}
}

// IsTerminal reports whether w is a terminal file descriptor.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// StartFile adds a bar (or prints a start line) for one file.
func (u *BatchUI) StartFile(index, total int, name string, size int64) FileTracker {
	fb := &FileBar{
		ui:        u,
		index:     index,
		total:     total,
		name:      name,
		size:      size,
		startTime: time.Now(),
	}

	label := fmt.Sprintf("[%d/%d] %s%s", index, total, truncatePath(name, 2), formatSize(size))

	if u.isTerminal {
		barTotal := size
		if barTotal < 0 {
			barTotal = 0
		}
		fb.bar = u.progress.New(barTotal,
			mpb.BarStyle().
				Lbound("[").
				Filler("█").
				Tip("█").
				Padding("░").
				Rbound("]"),
			mpb.PrependDecorators(
				decor.Any(func(s decor.Statistics) string {
					if retries := fb.retries.Load(); retries > 0 {
						return fmt.Sprintf("%s (retry %d)", label, retries)
					}
					return label
				}, decor.WCSyncSpace),
			),
			mpb.AppendDecorators(
				decor.CountersKibiByte("% .1f / % .1f", decor.WCSyncSpace),
				decor.Name("  "),
				decor.Percentage(decor.WCSyncSpace),
				decor.Name("  "),
				decor.EwmaSpeed(decor.SizeB1024(0), "% .1f", 30, decor.WCSyncSpace),
			),
			mpb.BarRemoveOnComplete(),
		)
	} else {
		fmt.Fprintf(u.out, "Uploading %s\n", label)
	}

	return fb
}

// Wrap proxies r through the bar. A second call rewinds the bar to zero.
func (f *FileBar) Wrap(r io.Reader) io.Reader {
	if f.bar == nil {
		return r
	}
	f.bar.SetCurrent(0)
	f.startTime = time.Now()
	return f.bar.ProxyReader(r)
}

// SetRetry updates the retry counter shown next to the label.
func (f *FileBar) SetRetry(count int) {
	f.retries.Store(int32(count))
}

// Complete finishes the bar and prints a one-line summary above the bars.
func (f *FileBar) Complete(result string, err error) {
	elapsed := time.Since(f.startTime)

	var msg string
	if err == nil {
		if f.bar != nil {
			// Negative total means "use current": exact 100% whatever the size hint
			f.bar.SetTotal(-1, true)
		}
		msg = fmt.Sprintf("✓ [%d/%d] %s → %s (%s)\n",
			f.index, f.total, truncatePath(f.name, 2), result, elapsed.Round(time.Millisecond))
		f.ui.completed.Add(1)
	} else {
		if f.bar != nil {
			f.bar.Abort(false)
		}
		retries := f.retries.Load()
		if retries > 0 {
			msg = fmt.Sprintf("✗ [%d/%d] %s: %v (after %d retries)\n", f.index, f.total, truncatePath(f.name, 2), err, retries)
		} else {
			msg = fmt.Sprintf("✗ [%d/%d] %s: %v\n", f.index, f.total, truncatePath(f.name, 2), err)
		}
		f.ui.failed.Add(1)
	}

	// Write through mpb's writer so the line lands above the bars
	_, _ = f.ui.Writer().Write([]byte(msg))
}

// Counts returns how many files completed and failed so far.
func (u *BatchUI) Counts() (completed, failed int) {
	return int(u.completed.Load()), int(u.failed.Load())
}

// Wait blocks until all progress bars complete
func (u *BatchUI) Wait() {
	if u.progress != nil {
		u.progress.Wait()
	}
}

// Writer returns an io.Writer that safely prints above the progress bars
func (u *BatchUI) Writer() io.Writer {
	if u.progress != nil && u.isTerminal {
		return u.progress
	}
	return u.out
}

func formatSize(size int64) string {
	if size < 0 {
		return ""
	}
	return fmt.Sprintf(" (%.1f MiB)", float64(size)/(1024*1024))
}

// truncatePath truncates a file path to show only the last N components
// Example: truncatePath("/a/b/c/d/file.txt", 3) → "…/c/d/file.txt"
func truncatePath(path string, maxComponents int) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) <= maxComponents {
		return filepath.Base(path)
	}
	relevant := parts[len(parts)-maxComponents:]
	return "…/" + strings.Join(relevant, "/")
}

// enableANSIOnWindows enables Virtual Terminal processing on Windows for ANSI escape sequences
func enableANSIOnWindows(f *os.File) {
	if runtime.GOOS == "windows" {
		enableWindowsANSI(f)
	}
}
