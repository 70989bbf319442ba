package validation

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	apperrors "donasi/internal/errors"
)

var ErrNotImage = &apperrors.DomainError{
	Code:    "NOT_IMAGE",
	Message: "file must be an image",
}

var ErrFileTooLarge = &apperrors.DomainError{
	Code:    "FILE_TOO_LARGE",
	Message: "file is too large",
}

// Upload is a file selected for a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// NewUpload sniffs the content type of data.
func NewUpload(filename string, data []byte) *Upload {
	return &Upload{
		Filename:    filepath.Base(filename),
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}
}

// LoadUpload reads a file from disk, refusing anything above MaxAvatarBytes.
func LoadUpload(path string) (*Upload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxAvatarBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return NewUpload(path, data), nil
}

// IsImage reports whether the sniffed type is image/*.
func (u *Upload) IsImage() bool {
	return strings.HasPrefix(u.ContentType, "image/")
}

// ValidateImage checks an optional avatar upload.
func ValidateImage(field string, u *Upload) error {
	if u == nil {
		return nil
	}
	if len(u.Data) > MaxAvatarBytes {
		return apperrors.Invalid(field, ErrFileTooLarge)
	}
	if !u.IsImage() {
		return apperrors.Invalid(field, ErrNotImage)
	}
	return nil
}
