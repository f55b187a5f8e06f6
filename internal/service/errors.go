package service

import (
	"errors"

	"github.com/greenflash/greenflash/internal/repository"
)

var (
	// ErrDuplicateUsername is returned by signup and profile edits.
	ErrDuplicateUsername = repository.ErrDuplicateUsername
	// ErrAuthFailed hides whether the username or the password was wrong.
	ErrAuthFailed = errors.New("invalid credentials")
	// ErrUnauthorized means the record is not in the caller's own set.
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)
