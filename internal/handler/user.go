package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/greenflash/greenflash/internal/ctxkeys"
	"github.com/greenflash/greenflash/internal/service"
	"github.com/greenflash/greenflash/internal/ui"
	"github.com/greenflash/greenflash/internal/ui/pages"
	"github.com/greenflash/greenflash/internal/validation"
)

type UserHandler struct {
	authService  *service.AuthService
	userService  *service.UserService
	placeService *service.PlaceService
	uploads      Uploads
}

func NewUserHandler(authService *service.AuthService, userService *service.UserService, placeService *service.PlaceService, uploads Uploads) *UserHandler {
	return &UserHandler{
		authService:  authService,
		userService:  userService,
		placeService: placeService,
		uploads:      uploads,
	}
}

func (h *UserHandler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	count, err := h.placeService.Count(user.ID)
	if err != nil {
		slog.Error("failed to count bookmarks", "error", err, "user_id", user.ID)
	}

	ui.Render(w, r, pages.Profile(pages.New(w, r, user.Username), user, count))
}

func (h *UserHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	form := pages.ProfileForm{
		Username: user.Username,
		Email:    user.Email,
		Bio:      user.Bio,
		ImageURL: user.ImageURL,
	}
	ui.Render(w, r, pages.ProfileEdit(pages.New(w, r, "Edit profile"), form))
}

func (h *UserHandler) Edit(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	in := service.ProfileInput{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		Bio:      r.FormValue("bio"),
	}
	form := pages.ProfileForm{Username: in.Username, Email: in.Email, Bio: in.Bio, ImageURL: user.ImageURL}

	upload, closeUpload, err := h.uploads.image(r)
	if err != nil {
		p := pages.New(w, r, "Edit profile").WithErrors(err)
		ui.RenderStatus(w, r, http.StatusUnprocessableEntity, pages.ProfileEdit(p, form))
		return
	}
	defer closeUpload()

	_, err = h.userService.UpdateProfile(user.ID, in, upload)
	if err != nil {
		var verrs validation.Errors
		switch {
		case errors.Is(err, service.ErrDuplicateUsername):
			ui.AddFlash(w, r, ui.FlashDanger, "Username already taken")
			ui.Render(w, r, pages.ProfileEdit(pages.New(w, r, "Edit profile"), form))
		case errors.As(err, &verrs):
			p := pages.New(w, r, "Edit profile").WithErrors(err)
			ui.RenderStatus(w, r, http.StatusUnprocessableEntity, pages.ProfileEdit(p, form))
		default:
			slog.Error("profile update failed", "error", err, "user_id", user.ID)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	ui.AddFlash(w, r, ui.FlashSuccess, "Profile updated.")
	http.Redirect(w, r, "/users/profile", http.StatusSeeOther)
}

func (h *UserHandler) ChangePasswordPage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, pages.ChangePassword(pages.New(w, r, "Change password")))
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	newPassword := r.FormValue("new_password")

	if newPassword != r.FormValue("confirm_password") {
		ui.AddFlash(w, r, ui.FlashDanger, "New Passwords Must Match")
		ui.RenderStatus(w, r, http.StatusUnprocessableEntity, pages.ChangePassword(pages.New(w, r, "Change password")))
		return
	}

	_, err := h.authService.ChangePassword(user.Username, r.FormValue("current_password"), newPassword)
	if err != nil {
		var verrs validation.Errors
		switch {
		case errors.Is(err, service.ErrAuthFailed):
			ui.AddFlash(w, r, ui.FlashDanger, "Current password is not correct.")
			ui.RenderStatus(w, r, http.StatusUnauthorized, pages.ChangePassword(pages.New(w, r, "Change password")))
		case errors.As(err, &verrs):
			p := pages.New(w, r, "Change password")
			p.Errors = validation.Errors{"new_password": verrs.Get("password")}
			ui.RenderStatus(w, r, http.StatusUnprocessableEntity, pages.ChangePassword(p))
		default:
			slog.Error("password change failed", "error", err, "user_id", user.ID)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	slog.Info("password updated", "user_id", user.ID)
	ui.AddFlash(w, r, ui.FlashSuccess, "Password Successfully Changed!")
	http.Redirect(w, r, "/users/profile", http.StatusSeeOther)
}

func (h *UserHandler) DeleteConfirmPage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, pages.DeleteAccount(pages.New(w, r, "Delete account")))
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.userService.DeleteAccount(user.ID)
	if err != nil {
		slog.Error("account deletion failed", "error", err, "user_id", user.ID)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	slog.Info("account deleted", "user_id", user.ID)
	h.authService.Logout(w)
	ui.AddFlash(w, r, ui.FlashSuccess, "Account successfully deleted.")
	http.Redirect(w, r, "/signup", http.StatusSeeOther)
}
