package utils

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ErrNoFile          = errors.New("no file uploaded")
	ErrEmptyFilename   = errors.New("empty filename")
	ErrInvalidFileType = errors.New("file extension not allowed")
)

// AllowedImageExtensions is the upload whitelist, lower case and without the dot.
var AllowedImageExtensions = []string{"png", "jpg", "jpeg"}

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateImageFile(file *multipart.FileHeader) error
	ReadFile(file *multipart.FileHeader) ([]byte, error)
}

type utils struct {
	allowedExtensions map[string]struct{}
}

func New() IUtils {
	allowed := make(map[string]struct{}, len(AllowedImageExtensions))
	for _, ext := range AllowedImageExtensions {
		allowed[ext] = struct{}{}
	}

	return &utils{
		allowedExtensions: allowed,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

// ValidateImageFile checks the upload by name only: the text after the last dot must be an allowed extension.
// The content itself is checked later by the decoder.
func (u *utils) ValidateImageFile(file *multipart.FileHeader) error {
	if file == nil {
		return ErrNoFile
	}

	if file.Filename == "" {
		return ErrEmptyFilename
	}

	ext, ok := FileExtension(file.Filename)
	if !ok {
		return ErrInvalidFileType
	}

	if _, allowed := u.allowedExtensions[ext]; !allowed {
		return ErrInvalidFileType
	}

	return nil
}

func (u *utils) ReadFile(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	return data, nil
}

// FileExtension returns the lower-cased text after the last dot of filename.
func FileExtension(filename string) (string, bool) {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return "", false
	}
	return strings.ToLower(filename[idx+1:]), true
}
