package kb

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/utc"
	"github.com/klauspost/compress/zstd"

	"github.com/agentstation/trapkit/pkg/constants"
	"github.com/agentstation/trapkit/pkg/errors"
)

// BackupName returns the backup file name for path at time t, for example
// traps.20260218T120000Z.json.zst.
func BackupName(path string, t utc.Time) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + "." + t.Time.UTC().Format(constants.BackupTimeFormat) + constants.BackupSuffix
}

// Backup writes a zstd-compressed copy of the file at path into dir (the
// file's own directory when dir is empty) and returns the backup path. A
// missing source file returns a NotFoundError.
func Backup(path, dir string, t utc.Time) (string, error) {
	// Path is from trapkit configuration
	src, err := os.Open(path) //nolint:gosec
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewNotFoundError("document", path)
		}
		return "", errors.WrapIO("read", path, err)
	}
	defer func() { _ = src.Close() }()

	if dir == "" {
		dir = filepath.Dir(path)
	}
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return "", errors.WrapIO("create", dir, err)
	}
	dst := filepath.Join(dir, BackupName(path, t))

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.FilePermissions) //nolint:gosec
	if err != nil {
		return "", errors.WrapIO("create", dst, err)
	}

	enc, err := zstd.NewWriter(out)
	if err != nil {
		_ = out.Close()
		return "", errors.WrapIO("backup", dst, err)
	}
	if _, err := io.Copy(enc, src); err != nil {
		_ = enc.Close()
		_ = out.Close()
		_ = os.Remove(dst)
		return "", errors.WrapIO("backup", dst, err)
	}
	if err := enc.Close(); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return "", errors.WrapIO("backup", dst, err)
	}
	if err := out.Close(); err != nil {
		return "", errors.WrapIO("close", dst, err)
	}
	return dst, nil
}

// ReadBackup decompresses a backup written by Backup and returns its bytes.
func ReadBackup(path string) ([]byte, error) {
	// Path is from user input
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	defer func() { _ = f.Close() }()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return data, nil
}

// RestoreBackup decompresses a backup and parses it as a document.
func RestoreBackup(path string) (*Document, error) {
	data, err := ReadBackup(path)
	if err != nil {
		return nil, err
	}
	return parse(data, path)
}
