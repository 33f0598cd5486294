// Package activitylog appends tracked landmark coordinates to a CSV file.
//
// The file has one header row followed by one row per detected frame:
// an HH:MM:SS timestamp and an x and y column for each tracked landmark.
// Landmarks that were not available are written as empty fields.
package activitylog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/teslashibe/activity-tracker/pkg/pose"
)

// TimestampLayout is the time-of-day format of the timestamp column.
const TimestampLayout = "15:04:05"

// DefaultPath is the log file used when none is configured.
const DefaultPath = "activity_log.csv"

// Record is one logged frame.
type Record struct {
	Time      time.Time         `json:"time"`
	Landmarks *pose.LandmarkSet `json:"-"`
}

// Header returns the fixed column names.
func Header() []string {
	cols := []string{"timestamp"}
	for _, l := range pose.Landmarks() {
		cols = append(cols, l.String()+"_x", l.String()+"_y")
	}
	return cols
}

// Row renders the record as CSV fields matching Header.
func (r Record) Row() []string {
	row := make([]string, 0, 1+2*int(pose.NumLandmarks))
	row = append(row, r.Time.Format(TimestampLayout))
	for _, l := range pose.Landmarks() {
		p, ok := r.Landmarks.Get(l)
		if !ok {
			row = append(row, "", "")
			continue
		}
		row = append(row, formatCoord(p.X), formatCoord(p.Y))
	}
	return row
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Logger appends records to a CSV file. It never truncates existing content.
type Logger struct {
	path string
	file *os.File
	w    *csv.Writer
	sync bool
	n    int
	mu   sync.Mutex
}

// Option configures a Logger.
type Option func(*Logger)

// WithSync fsyncs the file after every record.
func WithSync() Option {
	return func(l *Logger) { l.sync = true }
}

// Open opens path for appending, creating it with the header row if it does
// not exist yet (or exists but is empty).
func Open(path string, opts ...Option) (*Logger, error) {
	path = filepath.Clean(path)

	needHeader := false
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		needHeader = true
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
	case err != nil:
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	case info.IsDir():
		return nil, fmt.Errorf("log path %s is a directory", path)
	case info.Size() == 0:
		needHeader = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := &Logger{
		path: path,
		file: f,
		w:    csv.NewWriter(f),
	}
	for _, opt := range opts {
		opt(l)
	}

	if needHeader {
		if err := l.write(Header()); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}
	return l, nil
}

// Append writes one record and flushes it to the file.
func (l *Logger) Append(r Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return fmt.Errorf("append to closed log %s", l.path)
	}
	if err := l.write(r.Row()); err != nil {
		return fmt.Errorf("append to %s: %w", l.path, err)
	}
	l.n++
	return nil
}

func (l *Logger) write(row []string) error {
	if err := l.w.Write(row); err != nil {
		return err
	}
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return err
	}
	if l.sync {
		return l.file.Sync()
	}
	return nil
}

// Count returns the number of records appended through this logger.
func (l *Logger) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.n
}

// Path returns the log file path.
func (l *Logger) Path() string {
	return l.path
}

// Close flushes and closes the file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	l.w.Flush()
	werr := l.w.Error()
	cerr := l.file.Close()
	l.file = nil
	if werr != nil {
		return werr
	}
	return cerr
}
