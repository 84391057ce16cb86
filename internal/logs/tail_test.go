package logs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeLog(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
}

func TestLast(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "shelfsync.log")
	content := "one\ntwo\nthree\nfour\n"
	writeLog(t, path, content)

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "fewer than available", limit: 2, want: []string{"three", "four"}},
		{name: "more than available", limit: 10, want: []string{"one", "two", "three", "four"}},
		{name: "zero means all", limit: 0, want: []string{"one", "two", "three", "four"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, offset, err := Last(path, tt.limit)
			if err != nil {
				t.Fatalf("Last: %v", err)
			}
			if diff := cmp.Diff(tt.want, lines); diff != "" {
				t.Fatalf("lines mismatch (-want +got):\n%s", diff)
			}
			if offset != int64(len(content)) {
				t.Fatalf("offset = %d, want %d", offset, len(content))
			}
		})
	}
}

func TestLastMissingFile(t *testing.T) {
	t.Parallel()

	lines, offset, err := Last(filepath.Join(t.TempDir(), "absent.log"), 5)
	if err != nil || lines != nil || offset != 0 {
		t.Fatalf("Last(missing) = %v, %d, %v", lines, offset, err)
	}
}

func TestLastRejectsDirectory(t *testing.T) {
	t.Parallel()

	if _, _, err := Last(t.TempDir(), 5); err == nil {
		t.Fatal("expected error for directory")
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "shelfsync.log")
	writeLog(t, path, "old\n")
	_, offset, err := Last(path, 1)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}

	var (
		mu  sync.Mutex
		got []string
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Follow(ctx, path, offset, 10*time.Millisecond, func(line string) {
			mu.Lock()
			got = append(got, line)
			mu.Unlock()
		})
	}()

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	if _, err := file.WriteString("new 1\nnew 2\npartial"); err != nil {
		t.Fatalf("append: %v", err)
	}
	file.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n >= 2 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Follow: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]string{"new 1", "new 2"}, got); diff != "" {
		t.Fatalf("followed lines mismatch (-want +got):\n%s", diff)
	}
}

func TestReadFromRestartsAfterTruncation(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "shelfsync.log")
	writeLog(t, path, "fresh\n")

	var got []string
	offset, err := readFrom(path, 1000, func(line string) { got = append(got, line) })
	if err != nil {
		t.Fatalf("readFrom: %v", err)
	}
	if strings.Join(got, ",") != "fresh" || offset != int64(len("fresh\n")) {
		t.Fatalf("readFrom after truncation = %v, %d", got, offset)
	}
}
