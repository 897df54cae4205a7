// Package logging builds the zerolog logger shared by the session.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

const permission = 0o664

// Build collects logger settings; Make produces the logger.
type Build struct {
	writer  io.Writer
	path    string
	level   string
	console bool
}

// Log holds a logger and the file it writes to, if any.
type Log struct {
	Logger  zerolog.Logger
	LogFile *os.File
}

// New starts a build that writes JSON lines to stderr at info level.
func New() *Build {
	return &Build{writer: os.Stderr, level: zerolog.InfoLevel.String()}
}

// FromPath appends to the file at path instead of the writer.
func (b *Build) FromPath(path string) *Build {
	b.path = path
	return b
}

// FromWriter writes to w.
func (b *Build) FromWriter(w io.Writer) *Build {
	b.writer = w
	return b
}

// Level sets the minimum level by name (debug, info, warn, error...).
func (b *Build) Level(level string) *Build {
	b.level = level
	return b
}

// Console switches to the human-readable console format.
func (b *Build) Console(on bool) *Build {
	b.console = on
	return b
}

// Make opens the log file if one was requested and returns the logger.
func (b *Build) Make() (*Log, error) {
	lvl, err := zerolog.ParseLevel(b.level)
	if err != nil {
		return nil, err
	}
	l := &Log{}
	w := b.writer
	if b.path != "" {
		l.LogFile, err = os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		w = zerolog.SyncWriter(l.LogFile)
	}
	if b.console {
		w = zerolog.ConsoleWriter{Out: w, NoColor: b.path != ""}
	}
	l.Logger = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return l, nil
}

// Close closes the log file, if any.
func (l *Log) Close() error {
	if l.LogFile == nil {
		return nil
	}
	return l.LogFile.Close()
}
