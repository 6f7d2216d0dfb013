package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// startDelay gives the tailer time to open the file and seek to the end
// before the test starts appending.
const startDelay = 500 * time.Millisecond

// deliverTimeout bounds how long a test waits for a line. The polling
// fallback fires every second, so two seconds is comfortable.
const deliverTimeout = 3 * time.Second

func TestTailerDeliversAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.log")
	writeFile(t, path, "history line\n")

	tailer, cancel := startTailer(t, path)
	defer cancel()
	time.Sleep(startDelay)

	appendFile(t, path, "Your cannon has broken!\n")
	expectLine(t, tailer, "Your cannon has broken!")

	appendFile(t, path, "first\nsecond\n")
	expectLine(t, tailer, "first")
	expectLine(t, tailer, "second")
}

func TestTailerSkipsExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.log")
	writeFile(t, path, "old one\nold two\n")

	tailer, cancel := startTailer(t, path)
	defer cancel()
	time.Sleep(startDelay)

	appendFile(t, path, "new line\n")

	// Only the appended line arrives; history is never replayed
	expectLine(t, tailer, "new line")
	select {
	case line := <-tailer.Lines():
		t.Errorf("unexpected extra line %q", line)
	case <-time.After(startDelay):
	}
}

func TestTailerHandlesTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.log")
	writeFile(t, path, "prelude\n")

	tailer, cancel := startTailer(t, path)
	defer cancel()
	time.Sleep(startDelay)

	appendFile(t, path, "before truncate\n")
	expectLine(t, tailer, "before truncate")

	// Truncate and write fresh content, as a log rotation-in-place does
	if err := os.WriteFile(path, []byte("after truncate\n"), 0644); err != nil {
		t.Fatalf("rewrite failed: %v", err)
	}
	expectLine(t, tailer, "after truncate")
}

func TestTailerWaitsForMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chat.log")

	// File does not exist yet
	tailer, cancel := startTailer(t, path)
	defer cancel()
	time.Sleep(startDelay)

	writeFile(t, path, "born just now\n")
	expectLine(t, tailer, "born just now")
}

func TestTailerStopsOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.log")
	writeFile(t, path, "")

	tailer := NewTailer(path, 8)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- tailer.Run(ctx) }()
	time.Sleep(startDelay)

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, expected context.Canceled", err)
		}
	case <-time.After(deliverTimeout):
		t.Fatal("Run did not return after cancel")
	}

	// The lines channel closes when Run returns
	if _, ok := <-tailer.Lines(); ok {
		t.Error("expected closed lines channel")
	}
}

// startTailer runs a tailer in the background, cleaning up with the test.
func startTailer(t *testing.T, path string) (*Tailer, context.CancelFunc) {
	t.Helper()
	tailer := NewTailer(path, 64)
	ctx, cancel := context.WithCancel(context.Background())
	go tailer.Run(ctx)
	t.Cleanup(cancel)
	return tailer, cancel
}

func expectLine(t *testing.T, tailer *Tailer, want string) {
	t.Helper()
	select {
	case line, ok := <-tailer.Lines():
		if !ok {
			t.Fatal("lines channel closed unexpectedly")
		}
		if line != want {
			t.Errorf("line = %q, expected %q", line, want)
		}
	case <-time.After(deliverTimeout):
		t.Fatalf("timed out waiting for line %q", want)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func appendFile(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("open for append failed: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("append failed: %v", err)
	}
}
