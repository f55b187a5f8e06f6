package service

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/greenflash/greenflash/internal/storage"
)

// Upload is a file received from a form.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// MediaService keeps one directory of images per user.
type MediaService struct {
	storage storage.Storage
}

func NewMediaService(storage storage.Storage) *MediaService {
	return &MediaService{storage: storage}
}

func (s *MediaService) key(userID, filename string) string {
	return path.Join(userID, filename)
}

// Save stores upload in the user's directory and returns the stored filename.
// Every save gets its own file, even when two uploads share a name.
func (s *MediaService) Save(userID string, upload *Upload) (string, error) {
	filename := storedFilename(upload.Filename)

	err := s.storage.Save(s.key(userID, filename), upload.Content)
	if err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}

	return filename, nil
}

// Replace deletes oldFilename (when set) and saves upload.
func (s *MediaService) Replace(userID, oldFilename string, upload *Upload) (string, error) {
	if oldFilename != "" {
		err := s.Delete(userID, oldFilename)
		if err != nil {
			slog.Warn("failed to delete replaced image", "error", err, "user_id", userID, "filename", oldFilename)
		}
	}

	return s.Save(userID, upload)
}

// Delete removes one image. A missing file is not an error.
func (s *MediaService) Delete(userID, filename string) error {
	if filename == "" {
		return nil
	}

	err := s.storage.Delete(s.key(userID, filename))
	if err != nil && !errors.Is(err, storage.ErrNotExist) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// DeleteAll removes the user's whole directory.
func (s *MediaService) DeleteAll(userID string) error {
	err := s.storage.DeletePrefix(userID)
	if err != nil {
		return fmt.Errorf("failed to delete user images: %w", err)
	}
	return nil
}

func (s *MediaService) URL(userID, filename string) string {
	if filename == "" {
		return ""
	}
	return s.storage.URL(s.key(userID, filename))
}

// storedFilename prefixes the sanitised name with a random id.
func storedFilename(name string) string {
	id := uuid.New().String()
	name = SecureFilename(name)
	if name == "" {
		return id
	}
	return id[:8] + "_" + name
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename reduces name to a flat ASCII filename that is safe to
// store: accents are stripped, separators and spaces become underscores,
// anything else outside [A-Za-z0-9_.-] is dropped.
func SecureFilename(name string) string {
	name = norm.NFKD.String(name)

	var b strings.Builder
	for _, r := range name {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}
	name = b.String()

	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// StagedImage is a saved upload whose predecessor has not been removed yet.
// Commit removes the predecessor, Rollback removes the new file.
type StagedImage struct {
	media    *MediaService
	userID   string
	previous string
	Filename string
}

// Stage saves upload next to previousFilename without deleting it, so a
// failed database write can be undone.
func (s *MediaService) Stage(userID, previousFilename string, upload *Upload) (*StagedImage, error) {
	filename, err := s.Save(userID, upload)
	if err != nil {
		return nil, err
	}

	return &StagedImage{
		media:    s,
		userID:   userID,
		previous: previousFilename,
		Filename: filename,
	}, nil
}

func (si *StagedImage) Commit() {
	if si.previous == "" || si.previous == si.Filename {
		return
	}

	err := si.media.Delete(si.userID, si.previous)
	if err != nil {
		slog.Warn("failed to delete replaced image", "error", err, "user_id", si.userID, "filename", si.previous)
	}
}

func (si *StagedImage) Rollback() {
	if si.Filename == si.previous {
		return
	}

	err := si.media.Delete(si.userID, si.Filename)
	if err != nil {
		slog.Warn("failed to delete staged image", "error", err, "user_id", si.userID, "filename", si.Filename)
	}
}
