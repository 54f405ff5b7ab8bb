package utils

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"hrintake/internal/application"
)

// ValidateInputFile checks if a file exists and is readable
func ValidateInputFile(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", filename)
		}
		return fmt.Errorf("cannot access file %s: %w", filename, err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filename)
	}

	// Check if file is readable
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("cannot read file %s: %w", filename, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %w", filename, err)
	}

	return nil
}

// ValidateOutputFile checks if the output file path is valid
func ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("cannot create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}

// GetFileExtension returns the file extension in lowercase
func GetFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	return strings.ToLower(ext)
}

// IsDraftFile checks if the file has an applicant draft extension
func IsDraftFile(filename string) bool {
	return slices.Contains([]string{".json", ".yaml", ".yml"}, GetFileExtension(filename))
}

var attachmentExtensions = map[string][]string{
	"photo":  {".jpg", ".jpeg", ".png"},
	"resume": {".pdf", ".doc", ".docx", ".jpg", ".jpeg", ".png"},
}

// IsAllowedAttachment reports whether filename may be uploaded as field
func IsAllowedAttachment(field, filename string) bool {
	return slices.Contains(attachmentExtensions[field], GetFileExtension(filename))
}

// ContentTypeFor guesses a content type from the extension, falling back to sniffing data
func ContentTypeFor(filename string, data []byte) string {
	if ct := mime.TypeByExtension(GetFileExtension(filename)); ct != "" {
		return ct
	}
	return application.NewAttachment(filename, "", data).ContentType
}

// ReadAttachment loads a photo or resume from disk. A positive maxSize bounds the file size.
func ReadAttachment(field, filename string, maxSize int64) (*application.Attachment, error) {
	if err := ValidateInputFile(filename); err != nil {
		return nil, err
	}
	if !IsAllowedAttachment(field, filename) {
		return nil, fmt.Errorf("%s must be one of %v, got %s", field, attachmentExtensions[field], filepath.Base(filename))
	}

	info, err := os.Stat(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot access file %s: %w", filename, err)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, fmt.Errorf("%s is %s, the limit is %s", filepath.Base(filename), FormatFileSize(info.Size()), FormatFileSize(maxSize))
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot read file %s: %w", filename, err)
	}
	return application.NewAttachment(filepath.Base(filename), ContentTypeFor(filename, data), data), nil
}

// FormatFileSize returns a human-readable file size
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
