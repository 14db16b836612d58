// Package recorder appends outcome rows to a CSV log shared by all actors.
package recorder

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"sync"
)

// ErrClosed is returned by Append after Close.
var ErrClosed = errors.New("recorder: log closed")

// Log is an append-only CSV file. Each Append writes and flushes exactly one
// row under a mutex, so rows from concurrent actors never interleave.
type Log struct {
	path   string
	mu     sync.Mutex
	f      *os.File
	w      *csv.Writer
	rows   int
	closed bool
}

// Open opens path for appending. When the file is absent or empty the header
// is written first; an existing header is left untouched.
func Open(path string, header []string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat log %s: %w", path, err)
	}

	l := &Log{path: path, f: f, w: csv.NewWriter(f)}
	if info.Size() == 0 {
		if err := l.write(header); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing log header: %w", err)
		}
	}
	return l, nil
}

// Path returns the file the log writes to.
func (l *Log) Path() string {
	return l.path
}

// Append writes one row.
func (l *Log) Append(row []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	if err := l.write(row); err != nil {
		return fmt.Errorf("appending to %s: %w", l.path, err)
	}
	l.rows++
	return nil
}

// Rows returns the number of rows appended through this Log.
func (l *Log) Rows() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rows
}

// Close flushes and closes the file. Further appends return ErrClosed.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	l.w.Flush()
	return errors.Join(l.w.Error(), l.f.Close())
}

func (l *Log) write(row []string) error {
	if err := l.w.Write(row); err != nil {
		return err
	}
	l.w.Flush()
	return l.w.Error()
}
