package errors_test

import (
	"context"
	"errors"
	"testing"

	pkgerrors "github.com/agentstation/trapkit/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFoundError(t *testing.T) {
	err := pkgerrors.NewNotFoundError("test case", "moving-robot")
	assert.Equal(t, `test case "moving-robot" not found`, err.Error())
	assert.True(t, pkgerrors.IsNotFound(err))

	wrapped := errors.Join(errors.New("lookup"), err)
	assert.True(t, pkgerrors.IsNotFound(wrapped))
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("contribution.id", "", "cannot be empty")
		assert.Equal(t, "validation failed for field contribution.id: cannot be empty", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "document is empty"}
		assert.Equal(t, "validation failed: document is empty", err.Error())
	})

	t.Run("wrap nil", func(t *testing.T) {
		assert.NoError(t, pkgerrors.WrapValidation("x", nil))
	})
}

func TestParseError(t *testing.T) {
	base := errors.New("unexpected EOF")

	err := pkgerrors.NewParseError("csv", "claude.csv", "bad row", base)
	assert.Equal(t, "csv parse error in claude.csv: bad row", err.Error())
	assert.ErrorIs(t, err, base)

	err.Line = 12
	assert.Equal(t, "csv parse error in claude.csv at line 12: bad row", err.Error())

	wrapped := pkgerrors.WrapParse("json", "", base)
	assert.Equal(t, "json parse error: unexpected EOF", wrapped.Error())
}

func TestIOAndResourceErrors(t *testing.T) {
	base := errors.New("permission denied")

	ioErr := pkgerrors.WrapIO("write", "traps.json", base)
	require.Error(t, ioErr)
	assert.Equal(t, "IO error during write of traps.json: permission denied", ioErr.Error())
	assert.ErrorIs(t, ioErr, base)

	resErr := pkgerrors.WrapResource("load", "document", "traps.json", ioErr)
	assert.Contains(t, resErr.Error(), "failed to load document traps.json")
	assert.ErrorIs(t, resErr, base)

	assert.NoError(t, pkgerrors.WrapIO("write", "x", nil))
	assert.NoError(t, pkgerrors.WrapResource("load", "x", "", nil))
}

func TestMergeAndConfigErrors(t *testing.T) {
	base := errors.New("nil document")

	mergeErr := pkgerrors.NewMergeError("", base)
	assert.Equal(t, "merge failed: nil document", mergeErr.Error())
	assert.Equal(t, "merge failed for test case ebbinghaus: nil document",
		pkgerrors.NewMergeError("ebbinghaus", base).Error())
	assert.ErrorIs(t, mergeErr, base)

	cfgErr := pkgerrors.NewConfigError("tables", "duplicate display name", nil)
	assert.Equal(t, "configuration error in tables: duplicate display name", cfgErr.Error())
}

func TestWrapCanceled(t *testing.T) {
	err := pkgerrors.WrapCanceled("merge", context.Canceled)
	assert.True(t, pkgerrors.IsCanceled(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, pkgerrors.WrapCanceled("merge", nil))
}

func TestCommandError(t *testing.T) {
	inner := pkgerrors.NewValidationError("trials", nil, "at least one trial file is required")
	err := pkgerrors.NewCommandError("update", "update knowledge base", inner)

	assert.Equal(t, "update failed during update knowledge base: validation failed for field trials: at least one trial file is required", err.Error())
	assert.True(t, pkgerrors.IsValidationError(err))

	var target *pkgerrors.ValidationError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "trials", target.Field)
}
