package service

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/greenflash/greenflash/internal/model"
	"github.com/greenflash/greenflash/internal/repository"
	"github.com/greenflash/greenflash/internal/validation"
)

const SessionCookie = "session"

// SignupInput is the validated signup form.
type SignupInput struct {
	Username string `form:"username" validate:"required,max=20"`
	Password string `form:"password" validate:"required,max=72"`
	Email    string `form:"email" validate:"required,email,max=254"`
}

type AuthService struct {
	userRepository repository.UserRepository
	emailService   *EmailService
	sessionSecret  string
	sessionExpiry  time.Duration
	isProduction   bool
}

func NewAuthService(
	userRepository repository.UserRepository,
	emailService *EmailService,
	sessionSecret string,
	sessionExpiry time.Duration,
	isProduction bool,
) *AuthService {
	return &AuthService{
		userRepository: userRepository,
		emailService:   emailService,
		sessionSecret:  sessionSecret,
		sessionExpiry:  sessionExpiry,
		isProduction:   isProduction,
	}
}

// Signup creates a user with a bcrypt hashed password.
// It fails with ErrDuplicateUsername when the username is taken.
func (s *AuthService) Signup(username, password, email string) (*model.User, error) {
	in := SignupInput{
		Username: strings.TrimSpace(username),
		Password: password,
		Email:    strings.TrimSpace(email),
	}

	err := validation.Struct(in)
	if err != nil {
		return nil, err
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		PasswordHash: hash,
		Email:        in.Email,
		CreatedAt:    time.Now(),
	}

	err = s.userRepository.Create(user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	err = s.emailService.SendWelcomeEmail(user.Email, user.Username)
	if err != nil {
		slog.Warn("failed to send welcome email", "error", err, "user_id", user.ID)
	}

	return user, nil
}

// Authenticate returns the user when the password matches, and nil (without
// an error) when the username is unknown or the password is wrong.
func (s *AuthService) Authenticate(username, password string) (*model.User, error) {
	user, err := s.userRepository.ByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if s.ComparePassword(password, user.PasswordHash) != nil {
		return nil, nil
	}

	return user, nil
}

// ChangePassword replaces the password after verifying currentPassword.
func (s *AuthService) ChangePassword(username, currentPassword, newPassword string) (*model.User, error) {
	user, err := s.Authenticate(username, currentPassword)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrAuthFailed
	}

	err = validation.ValidatePassword(newPassword)
	if err != nil {
		return nil, err
	}

	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = hash
	err = s.userRepository.Update(user)
	if err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	return user, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// GenerateSession signs a session token holding the user id.
func (s *AuthService) GenerateSession(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(s.sessionExpiry).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.sessionSecret))
}

// VerifySession returns the user id carried by a valid session token.
func (s *AuthService) VerifySession(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.sessionSecret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid session")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", errors.New("session has no user")
	}

	return userID, nil
}

// Login starts a session for user.
func (s *AuthService) Login(w http.ResponseWriter, user *model.User) error {
	token, err := s.GenerateSession(user.ID)
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Expires:  time.Now().Add(s.sessionExpiry),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Logout clears the session cookie.
func (s *AuthService) Logout(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}
