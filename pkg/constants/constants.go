// Package constants provides shared constants used throughout trapkit.
// This includes file permissions, default paths and the sentinel values that
// give unknown data a defined place in orderings.
package constants

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Default locations and names.
const (
	// DefaultDocumentPath is the knowledge-base document updated when no path is configured
	DefaultDocumentPath = "traps.json"

	// ConfigFileName is the viper config name searched in $HOME and the working directory
	ConfigFileName = ".trapkit"

	// EnvPrefix is the prefix for environment variable overrides (TRAPKIT_DOCUMENT, ...)
	EnvPrefix = "TRAPKIT"

	// BackupSuffix is appended to compressed backups of the prior document
	BackupSuffix = ".json.zst"

	// BackupTimeFormat stamps backup file names
	BackupTimeFormat = "20060102T150405Z"

	// JSONIndent is the indentation used when writing the document
	JSONIndent = "  "
)

// Trial table columns.
const (
	// ModelColumn is the default header of the raw model identifier column
	ModelColumn = "model"

	// TestColumn is the default header of the raw test identifier column
	TestColumn = "trap"

	// CorrectColumn is the default header of the correctness flag column
	CorrectColumn = "correct"
)

// Identity sentinels.
const (
	// UnknownReleaseDate sorts after every real YYYY-MM release date
	UnknownReleaseDate = "9999-99"

	// ReleaseDateLayout is the year-month granularity of model release dates
	ReleaseDateLayout = "2006-01"

	// ExtendedReasoningMarker is appended to display names of extended-reasoning variants
	ExtendedReasoningMarker = "†"

	// RateDecimals is the number of decimal places pass rates are rounded to
	RateDecimals = 2
)
