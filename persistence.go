package trapkit

import (
	"github.com/agentstation/trapkit/pkg/errors"
	"github.com/agentstation/trapkit/pkg/kb"
	"github.com/agentstation/trapkit/pkg/save"
)

// Compile-time interface check to ensure proper implementation.
var _ Persistence = (*client)(nil)

// Persistence handles document restore operations.
type Persistence interface {
	Restore(backupPath string, opts ...save.Option) (*kb.SaveResult, error)
}

// Restore decompresses a backup written by Update, checks it parses as a
// document and writes it to the configured path or writer.
func (c *client) Restore(backupPath string, opts ...save.Option) (*kb.SaveResult, error) {
	doc, err := kb.RestoreBackup(backupPath)
	if err != nil {
		return nil, errors.WrapResource("restore", "document", backupPath, err)
	}

	saved, err := kb.Save(doc, opts...)
	if err != nil {
		return nil, errors.WrapIO("write", "document", err)
	}
	return saved, nil
}
