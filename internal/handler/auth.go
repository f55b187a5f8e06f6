package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/greenflash/greenflash/internal/service"
	"github.com/greenflash/greenflash/internal/ui"
	"github.com/greenflash/greenflash/internal/ui/pages"
	"github.com/greenflash/greenflash/internal/validation"
)

type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
	uploads     Uploads
}

func NewAuthHandler(authService *service.AuthService, userService *service.UserService, uploads Uploads) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		uploads:     uploads,
	}
}

func (h *AuthHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, pages.Signup(pages.New(w, r, "Sign up"), pages.SignupForm{}))
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	form := pages.SignupForm{
		Username: strings.TrimSpace(r.FormValue("username")),
		Email:    strings.TrimSpace(r.FormValue("email")),
	}

	upload, closeUpload, err := h.uploads.image(r)
	if err != nil {
		p := pages.New(w, r, "Sign up").WithErrors(err)
		ui.RenderStatus(w, r, http.StatusUnprocessableEntity, pages.Signup(p, form))
		return
	}
	defer closeUpload()

	user, err := h.authService.Signup(form.Username, r.FormValue("password"), form.Email)
	if err != nil {
		var verrs validation.Errors
		switch {
		case errors.Is(err, service.ErrDuplicateUsername):
			ui.AddFlash(w, r, ui.FlashDanger, "Username already taken")
			ui.Render(w, r, pages.Signup(pages.New(w, r, "Sign up"), form))
		case errors.As(err, &verrs):
			p := pages.New(w, r, "Sign up").WithErrors(err)
			ui.RenderStatus(w, r, http.StatusUnprocessableEntity, pages.Signup(p, form))
		default:
			slog.Error("signup failed", "error", err, "username", form.Username)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	if upload != nil {
		err = h.userService.SetImage(user.ID, upload)
		if err != nil {
			// the account exists, the photo can be added from the profile page
			slog.Warn("failed to store signup photo", "error", err, "user_id", user.ID)
		}
	}

	err = h.authService.Login(w, user)
	if err != nil {
		slog.Error("failed to start session", "error", err, "user_id", user.ID)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	slog.Info("user signed up", "user_id", user.ID)
	ui.AddFlash(w, r, ui.FlashSuccess, fmt.Sprintf("Hello, %s!", user.Username))
	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	ui.Render(w, r, pages.Login(pages.New(w, r, "Log in"), "", next))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	next := r.URL.Query().Get("next")

	user, err := h.authService.Authenticate(username, r.FormValue("password"))
	if err != nil {
		slog.Error("authentication failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		ui.AddFlash(w, r, ui.FlashDanger, "Invalid credentials.")
		ui.RenderStatus(w, r, http.StatusUnauthorized, pages.Login(pages.New(w, r, "Log in"), username, next))
		return
	}

	err = h.authService.Login(w, user)
	if err != nil {
		slog.Error("failed to start session", "error", err, "user_id", user.ID)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	ui.AddFlash(w, r, ui.FlashSuccess, fmt.Sprintf("Hello, %s!", user.Username))
	http.Redirect(w, r, safeNext(next, "/home"), http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.Logout(w)
	ui.AddFlash(w, r, ui.FlashSuccess, "Logout successful!")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
