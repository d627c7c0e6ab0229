package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	MaxFileSize = 5 << 20
	MaxFiles    = 10
)

// RejectedError is returned for uploads refused because of what the client
// sent. Its text is safe to show.
type RejectedError struct{ msg string }

func (e *RejectedError) Error() string { return e.msg }

var (
	ErrNoFiles         = &RejectedError{"No files uploaded"}
	ErrTooManyFiles    = &RejectedError{fmt.Sprintf("At most %d files can be uploaded at once", MaxFiles)}
	ErrTooLarge        = &RejectedError{"File too large, maximum size is 5MB"}
	ErrUnsupportedType = &RejectedError{"Only JPEG, PNG, WebP, and GIF images are allowed"}
)

var allowed = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// Store writes uploaded images under Dir and addresses them below BaseURL.
type Store struct {
	Dir     string
	BaseURL string
}

func NewStore(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save sniffs fh's content, rejects anything but the allowed image types and
// stores it under a random name with the detected extension.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxFileSize {
		return "", ErrTooLarge
	}
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("detect type: %w", err)
	}
	if !mimetype.EqualsAny(mt.String(), allowed...) {
		return "", ErrUnsupportedType
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	name := uuid.NewString() + mt.Extension()
	dst, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	n, err := io.Copy(dst, io.LimitReader(src, MaxFileSize+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxFileSize {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.Dir, name))
		if errors.Is(err, ErrTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("write file: %w", err)
	}
	return path.Join(s.BaseURL, name), nil
}

// SaveAll stores every file or none of them.
func (s *Store) SaveAll(files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if len(files) > MaxFiles {
		return nil, ErrTooManyFiles
	}
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		u, err := s.Save(fh)
		if err != nil {
			s.remove(urls)
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, nil
}

func (s *Store) remove(urls []string) {
	for _, u := range urls {
		_ = os.Remove(filepath.Join(s.Dir, path.Base(u)))
	}
}

// Rejected returns the client-facing rejection carried by err, if any.
func Rejected(err error) (*RejectedError, bool) {
	var re *RejectedError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
