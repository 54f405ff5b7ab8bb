package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAllowedAttachment(t *testing.T) {
	tests := []struct {
		field    string
		filename string
		want     bool
	}{
		{"photo", "me.JPG", true},
		{"photo", "me.png", true},
		{"photo", "cv.pdf", false},
		{"resume", "cv.pdf", true},
		{"resume", "cv.docx", true},
		{"resume", "cv.exe", false},
		{"avatar", "me.png", false},
	}
	for _, tt := range tests {
		t.Run(tt.field+"/"+tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAllowedAttachment(tt.field, tt.filename))
		})
	}
}

func TestIsDraftFile(t *testing.T) {
	assert.True(t, IsDraftFile("draft.json"))
	assert.True(t, IsDraftFile("draft.YAML"))
	assert.True(t, IsDraftFile("draft.yml"))
	assert.False(t, IsDraftFile("draft.txt"))
}

func TestReadAttachment(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "cv.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4 test"), 0600))

	att, err := ReadAttachment("resume", pdf, 1024)
	require.NoError(t, err)
	assert.Equal(t, "cv.pdf", att.Filename)
	assert.Equal(t, "application/pdf", att.ContentType)
	assert.Equal(t, 13, att.Size())

	_, err = ReadAttachment("resume", pdf, 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "the limit is 4 B")

	_, err = ReadAttachment("photo", pdf, 0)
	require.Error(t, err)

	_, err = ReadAttachment("resume", filepath.Join(dir, "missing.pdf"), 0)
	require.Error(t, err)
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "5.0 MB", FormatFileSize(5<<20))
}
