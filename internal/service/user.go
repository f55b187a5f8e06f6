package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/greenflash/greenflash/internal/model"
	"github.com/greenflash/greenflash/internal/repository"
	"github.com/greenflash/greenflash/internal/validation"
)

// ProfileInput is the validated profile edit form.
type ProfileInput struct {
	Username string `form:"username" validate:"required,max=20"`
	Email    string `form:"email" validate:"required,email,max=254"`
	Bio      string `form:"bio" validate:"max=500"`
}

type UserService struct {
	userRepository repository.UserRepository
	mediaService   *MediaService
	emailService   *EmailService
}

func NewUserService(
	userRepository repository.UserRepository,
	mediaService *MediaService,
	emailService *EmailService,
) *UserService {
	return &UserService{
		userRepository: userRepository,
		mediaService:   mediaService,
		emailService:   emailService,
	}
}

func (s *UserService) ByID(id string) (*model.User, error) {
	user, err := s.userRepository.ByID(id)
	if err != nil {
		return nil, err
	}

	user.ImageURL = s.mediaService.URL(user.ID, user.ImageName)
	return user, nil
}

// UpdateProfile applies in and, when upload is set, replaces the profile photo.
func (s *UserService) UpdateProfile(userID string, in ProfileInput, upload *Upload) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	err := validation.Struct(in)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Username = in.Username
	user.Email = in.Email
	user.Bio = in.Bio

	var staged *StagedImage
	if upload != nil {
		staged, err = s.mediaService.Stage(user.ID, user.ImageName, upload)
		if err != nil {
			return nil, err
		}
		user.ImageName = staged.Filename
	}

	err = s.userRepository.Update(user)
	if err != nil {
		if staged != nil {
			staged.Rollback()
		}
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if staged != nil {
		staged.Commit()
	}

	user.ImageURL = s.mediaService.URL(user.ID, user.ImageName)
	return user, nil
}

// SetImage stores a profile photo for a user without one (signup).
func (s *UserService) SetImage(userID string, upload *Upload) error {
	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	user.ImageName, err = s.mediaService.Replace(user.ID, user.ImageName, upload)
	if err != nil {
		return err
	}

	err = s.userRepository.Update(user)
	if err != nil {
		return fmt.Errorf("failed to save image name: %w", err)
	}
	return nil
}

// DeleteAccount removes the user row (cascading ledgers and bookmarks) and
// then the user's media directory.
func (s *UserService) DeleteAccount(userID string) error {
	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	err = s.userRepository.Delete(userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	err = s.mediaService.DeleteAll(userID)
	if err != nil {
		// orphaned files are better than a half deleted account
		slog.Warn("failed to delete user media", "user_id", userID, "error", err)
	}

	err = s.emailService.SendAccountDeletedEmail(user.Email, user.Username)
	if err != nil {
		slog.Warn("failed to send account deleted email", "user_id", userID, "error", err)
	}

	return nil
}
