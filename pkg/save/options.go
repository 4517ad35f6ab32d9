// Package save holds the options shared by everything trapkit writes: the
// knowledge-base document and the provenance ledger.
package save

import (
	"io"

	"github.com/agentstation/utc"
)

// Format is a serialization format.
type Format int

// Format constants.
const (
	FormatJSON Format = iota
	FormatYAML
)

// IsValid checks if the format is valid.
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	}
	return "unknown"
}

// ParseFormat maps a name to a Format. Unknown names return false.
func ParseFormat(s string) (Format, bool) {
	switch s {
	case "json":
		return FormatJSON, true
	case "yaml", "yml":
		return FormatYAML, true
	}
	return FormatJSON, false
}

// Options is the configuration for save.
type Options struct {
	path      string
	writer    io.Writer
	format    Format
	atomic    bool
	backup    bool
	backupDir string
	now       func() utc.Time
}

// Path returns the destination file path.
func (s *Options) Path() string {
	return s.path
}

// Writer returns the destination writer. A writer takes precedence over a path.
func (s *Options) Writer() io.Writer {
	return s.writer
}

// Format returns the output format.
func (s *Options) Format() Format {
	return s.format
}

// Atomic reports whether file saves go through a temp file and rename.
func (s *Options) Atomic() bool {
	return s.atomic
}

// Backup reports whether the file being replaced is backed up first.
func (s *Options) Backup() bool {
	return s.backup
}

// BackupDir returns the backup directory. Empty means next to the file.
func (s *Options) BackupDir() string {
	return s.backupDir
}

// Now returns the save timestamp.
func (s *Options) Now() utc.Time {
	if s.now == nil {
		return utc.Now()
	}
	return s.now()
}

// Defaults returns the default save options.
func Defaults() *Options {
	return &Options{
		format: FormatJSON,
		atomic: true,
	}
}

// Apply applies the given options to the save options.
func (s *Options) Apply(opts ...Option) Options {
	for _, opt := range opts {
		opt(s)
	}
	return *s
}

// Option is a function that configures save options.
type Option func(*Options)

// WithFormat for custom output format.
func WithFormat(f Format) Option {
	return func(s *Options) {
		s.format = f
	}
}

// WithPath for filesystem saves.
func WithPath(path string) Option {
	return func(s *Options) {
		s.path = path
	}
}

// WithWriter for custom outputs.
func WithWriter(w io.Writer) Option {
	return func(s *Options) {
		s.writer = w
	}
}

// WithAtomic toggles temp-file-and-rename writes.
func WithAtomic(atomic bool) Option {
	return func(s *Options) {
		s.atomic = atomic
	}
}

// WithBackup enables a compressed backup of the existing file in dir
// (empty dir keeps the backup next to the file).
func WithBackup(dir string) Option {
	return func(s *Options) {
		s.backup = true
		s.backupDir = dir
	}
}

// WithClock overrides the timestamp source used to name backups.
func WithClock(now func() utc.Time) Option {
	return func(s *Options) {
		s.now = now
	}
}
