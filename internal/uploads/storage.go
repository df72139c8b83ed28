package uploads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Thumbnails are rendered at a fixed square size, always as PNG.
const thumbSize = 160

// Storage writes uploaded cat images to disk under generated names and
// renders a thumbnail next to each original.
type Storage struct {
	dir string
}

// NewStorage creates a Storage rooted at dir, creating it if needed.
func NewStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// Dir returns the storage root, for static file serving.
func (s *Storage) Dir() string {
	return s.dir
}

// Save stores the uploaded image under a generated filename and renders a
// 160x160 PNG thumbnail beside it. The original file is removed again when
// it does not decode as an image. Returns the stored filename.
func (s *Storage) Save(src io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.New().String() + ext
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}

	img, err := imaging.Open(path)
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("decode uploaded image: %w", err)
	}
	thumb := imaging.Fill(img, thumbSize, thumbSize, imaging.Center, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(s.dir, ThumbName(name))); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write thumbnail: %w", err)
	}
	return name, nil
}

// Remove deletes a stored file and its thumbnail. Missing files are not an
// error.
func (s *Storage) Remove(name string) error {
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, ThumbName(name))); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ThumbName returns the thumbnail filename for a stored original.
func ThumbName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + "_thumb.png"
}
