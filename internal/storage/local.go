package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage keeps files under a root directory on disk.
type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root, baseURL string) (*LocalStorage, error) {
	err := os.MkdirAll(root, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}

	return &LocalStorage{
		root:    root,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Root is the directory files are stored in.
func (s *LocalStorage) Root() string {
	return s.root
}

// resolve maps a key to a file path, refusing keys that escape root.
func (s *LocalStorage) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid storage path %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

func (s *LocalStorage) Save(key string, file io.Reader) error {
	target, err := s.resolve(key)
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(target), 0755)
	if err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	_, err = io.Copy(tmp, file)
	if err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}

	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	err = os.Rename(tmp.Name(), target)
	if err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	return nil
}

func (s *LocalStorage) Delete(key string) error {
	target, err := s.resolve(key)
	if err != nil {
		return err
	}

	err = os.Remove(target)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotExist
	}
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalStorage) DeletePrefix(prefix string) error {
	target, err := s.resolve(prefix)
	if err != nil {
		return err
	}

	err = os.RemoveAll(target)
	if err != nil {
		return fmt.Errorf("failed to delete directory: %w", err)
	}
	return nil
}

func (s *LocalStorage) URL(key string) string {
	return s.baseURL + path.Clean("/"+key)
}
