package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ImageExtensions is the upload allowlist for photos.
var ImageExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
}

// AllowedFile reports whether filename has an allowlisted image extension.
func AllowedFile(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return ImageExtensions[ext]
}

// ValidateImage checks an upload's name and size against the image rules.
func ValidateImage(filename string, size, maxSize int64) error {
	if maxSize > 0 && size > maxSize {
		return fmt.Errorf("file too large: maximum size is %d MB", maxSize/(1<<20))
	}

	if !AllowedFile(filename) {
		return fmt.Errorf("invalid file extension: only png, jpg, jpeg and gif are allowed")
	}

	return nil
}
