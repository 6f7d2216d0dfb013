// Package watch tails the game client's chat log file.
//
// The client appends one chat line per message. Tailer follows the file from
// its current end, surviving rotation and truncation, and delivers each new
// line on a channel. Lines that existed before the tailer started are never
// delivered; history must not be double-counted.
package watch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/abelbrown/slaytrack/internal/logging"
)

// pollInterval is the fallback scan cadence for filesystems where fsnotify
// misses write events (network mounts, some Windows setups).
const pollInterval = time.Second

// scanBurst throttles how often a burst of write events triggers a re-scan.
const scanBurst = 200 * time.Millisecond

// maxLineSize is the scanner buffer cap. Chat lines are short, but the log
// can carry long system messages.
const maxLineSize = 1024 * 1024

// Tailer follows a single log file and emits appended lines.
type Tailer struct {
	path    string
	lines   chan string
	limiter *rate.Limiter
}

// NewTailer creates a tailer for the file at path. The channel buffer absorbs
// bursts while the consumer is busy.
func NewTailer(path string, buffer int) *Tailer {
	return &Tailer{
		path:    path,
		lines:   make(chan string, buffer),
		limiter: rate.NewLimiter(rate.Every(scanBurst), 1),
	}
}

// Lines returns the channel new log lines are delivered on. It is closed
// when Run returns.
func (t *Tailer) Lines() <-chan string {
	return t.lines
}

// Run tails the file until the context is cancelled. It blocks; run it in
// its own goroutine. The watched file does not need to exist yet - the
// tailer picks it up on creation.
func (t *Tailer) Run(ctx context.Context) error {
	defer close(t.lines)

	absPath, err := filepath.Abs(t.path)
	if err != nil {
		return fmt.Errorf("failed to resolve log path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory: editors and the game client replace files, and
	// watching the file itself loses the watch on rotation.
	if err := w.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch log directory: %w", err)
	}

	var file *os.File
	var offset int64

	// Start at the end of whatever already exists
	if file, err = os.Open(absPath); err == nil {
		offset, _ = file.Seek(0, io.SeekEnd)
		logging.Info("Tailing chat log", "path", absPath, "offset", offset)
	} else {
		logging.Warn("Chat log not found yet, waiting for it to appear", "path", absPath)
	}
	defer func() {
		if file != nil {
			file.Close()
		}
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Clean(ev.Name), absPath) {
				continue
			}

			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				if file != nil {
					file.Close()
					file = nil
				}
				offset = 0
				continue
			}

			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if !t.limiter.Allow() {
					continue
				}
				file, offset = t.scan(ctx, absPath, file, offset)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logging.Warn("Watcher error", "error", err)

		case <-ticker.C:
			file, offset = t.scan(ctx, absPath, file, offset)
		}
	}
}

// scan reads any bytes appended since offset and emits complete lines.
// It reopens the file after rotation and rewinds after truncation.
func (t *Tailer) scan(ctx context.Context, absPath string, file *os.File, offset int64) (*os.File, int64) {
	if file == nil {
		f, err := os.Open(absPath)
		if err != nil {
			return nil, 0
		}
		file = f
		offset = 0
		logging.Info("Chat log opened", "path", absPath)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0
	}
	if info.Size() < offset {
		// Truncated: start over from the top
		offset = 0
	}
	if info.Size() == offset {
		return file, offset
	}

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		file.Close()
		return nil, 0
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		select {
		case t.lines <- scanner.Text():
		case <-ctx.Done():
			return file, offset
		}
	}
	if err := scanner.Err(); err != nil {
		logging.Warn("Scan error", "error", err)
	}

	offset, _ = file.Seek(0, io.SeekCurrent)
	return file, offset
}
