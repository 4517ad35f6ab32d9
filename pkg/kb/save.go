package kb

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/agentstation/trapkit/pkg/constants"
	"github.com/agentstation/trapkit/pkg/errors"
	"github.com/agentstation/trapkit/pkg/save"
)

// Marshal encodes the document with two-space indentation. Non-ASCII text is
// written as is.
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", constants.JSONIndent)
	if err := enc.Encode(doc); err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	return buf.Bytes(), nil
}

// SaveResult reports what Save wrote.
type SaveResult struct {
	Path       string `json:"path,omitempty" yaml:"path,omitempty"`
	BackupPath string `json:"backupPath,omitempty" yaml:"backup_path,omitempty"`
	Bytes      int    `json:"bytes" yaml:"bytes"`
}

// Save encodes the document as JSON and writes it to the configured writer or
// path. Any other format is rejected.
// File writes are atomic by default: the document goes to a temp file in the
// target directory which is then renamed over the destination.
func Save(doc *Document, opts ...save.Option) (*SaveResult, error) {
	options := save.Defaults()
	options.Apply(opts...)
	if options.Format() != save.FormatJSON {
		return nil, errors.NewValidationError("format", options.Format().String(), "the knowledge base is only written as json")
	}

	data, err := Marshal(doc)
	if err != nil {
		return nil, err
	}

	if w := options.Writer(); w != nil {
		n, err := w.Write(data)
		if err != nil {
			return nil, errors.WrapIO("write", "document", err)
		}
		return &SaveResult{Bytes: n}, nil
	}

	path := options.Path()
	if path == "" {
		return nil, errors.NewValidationError("path", nil, "a path or writer is required to save the document")
	}

	result := &SaveResult{Path: path, Bytes: len(data)}
	if options.Backup() {
		backupPath, err := Backup(path, options.BackupDir(), options.Now())
		if err != nil && !errors.IsNotFound(err) {
			return nil, err
		}
		result.BackupPath = backupPath
	}

	if !options.Atomic() {
		if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
			return nil, errors.WrapIO("write", path, err)
		}
		return result, nil
	}
	if err := writeAtomic(path, data); err != nil {
		return nil, err
	}
	return result, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.WrapIO("create", "temp file", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return errors.WrapIO("write", tempPath, err)
	}
	if err := tempFile.Sync(); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return errors.WrapIO("sync", tempPath, err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("close", tempPath, err)
	}
	if err := os.Chmod(tempPath, constants.FilePermissions); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("chmod", tempPath, err)
	}

	// Atomically move temp file to final location
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return errors.WrapIO("move", path, err)
	}
	return nil
}
