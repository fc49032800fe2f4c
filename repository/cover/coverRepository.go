package coverrepo

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PublicPrefix is the URL prefix owned cover files are served under.
const PublicPrefix = "/uploads/covers/"

// Store keeps uploaded cover images on the local filesystem and maps them
// to their public /uploads/covers/ paths.
type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the uploaded file under a fresh random name and returns its
// public path.
func (s *Store) Save(filename string, src io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.NewString() + ext

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return PublicPrefix + name, nil
}

// Remove deletes an owned cover file. External URLs and already-missing
// files are ignored.
func (s *Store) Remove(publicPath string) error {
	if !Owned(publicPath) {
		return nil
	}
	name := filepath.Base(publicPath)
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Owned reports whether the image reference points at a file this store wrote.
func Owned(publicPath string) bool {
	return strings.HasPrefix(publicPath, PublicPrefix)
}
