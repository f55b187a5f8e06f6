package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/greenflash/greenflash/internal/service"
	"github.com/greenflash/greenflash/internal/validation"
)

const maxJSONBody = 1 << 20

type message struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to write json response", "error", err)
	}
}

func readJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(v)
}

// Uploads applies the configured rules to image form fields.
type Uploads struct {
	MaxSize int64
	// EnforceExtensions rejects files outside the png/jpg/jpeg/gif allowlist.
	EnforceExtensions bool
}

// image returns the "image" file of a multipart form, or nil when none was
// chosen. The returned close func must be called once the upload is stored.
func (u Uploads) image(r *http.Request) (*service.Upload, func(), error) {
	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile || (err == nil && header.Filename == "") {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, validation.Errors{"image": "Could not read the uploaded file."}
	}

	closeFile := func() {
		closeErr := file.Close()
		if closeErr != nil {
			slog.Error("failed to close file", "error", closeErr)
		}
	}

	if u.MaxSize > 0 && header.Size > u.MaxSize {
		closeFile()
		return nil, func() {}, validation.Errors{"image": "File is too large."}
	}

	if u.EnforceExtensions && !validation.AllowedFile(header.Filename) {
		closeFile()
		return nil, func() {}, validation.Errors{"image": "Only png, jpg, jpeg and gif images are allowed."}
	}

	return &service.Upload{
		Filename: header.Filename,
		Size:     header.Size,
		Content:  file,
	}, closeFile, nil
}

// safeNext returns next when it is a path on this site, and fallback
// otherwise.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, `/\`) {
		return fallback
	}

	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}
