package common

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrintake/internal/errors"
	"hrintake/internal/types"
)

func TestValidateDraftFile(t *testing.T) {
	dir := t.TempDir()
	draft := filepath.Join(dir, "draft.yaml")
	require.NoError(t, os.WriteFile(draft, []byte("fullName: x\n"), 0600))
	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("x"), 0600))

	fp := NewFileProcessor(nil)

	ext, err := fp.ValidateDraftFile(draft)
	require.NoError(t, err)
	assert.Equal(t, ".yaml", ext)

	_, err = fp.ValidateDraftFile(notes)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))

	_, err = fp.ValidateDraftFile(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.HasCode(err, "INVALID_INPUT_FILE"))
}

func TestReadAndWriteFile(t *testing.T) {
	fp := NewFileProcessor(nil)
	path := filepath.Join(t.TempDir(), "nested", "out.txt")

	require.NoError(t, fp.WriteBinary(path, []byte("hello")))
	content, err := fp.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", content)

	_, err = fp.ReadFile(filepath.Join(t.TempDir(), "nope"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeFileNotFound))
}

func TestHandleOutputToWriter(t *testing.T) {
	var buf bytes.Buffer
	oh := NewOutputHandler(nil)
	oh.SetWriter(&buf)

	err := oh.HandleOutput(types.BulkEmailResult{Sent: 3, Total: 3}, CommandConfig{OutputFormat: "text"})
	require.NoError(t, err)
	assert.Equal(t, "Emails sent: 3/3\n", buf.String())

	err = oh.HandleOutput(types.BulkEmailResult{}, CommandConfig{OutputFormat: "yaml"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))
}

func TestRunCommandWritesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "counts.json")
	err := RunCommand(context.Background(), nil, CommandConfig{OutputFile: out, OutputFormat: "json"},
		func(context.Context) (types.Counts, error) {
			return types.Counts{Total: 5}, nil
		})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"total": 5`)
}

func TestRunDraftCommandRejectsBadPath(t *testing.T) {
	called := false
	err := RunDraftCommand(context.Background(), nil, CommandConfig{OutputFormat: "json"}, "missing.yaml",
		func(context.Context, string) (types.Counts, error) {
			called = true
			return types.Counts{}, nil
		})
	require.Error(t, err)
	assert.False(t, called)
}
