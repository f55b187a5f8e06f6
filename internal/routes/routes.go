package routes

import (
	"io/fs"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/greenflash/greenflash/assets"
	"github.com/greenflash/greenflash/internal/app"
	"github.com/greenflash/greenflash/internal/config"
	"github.com/greenflash/greenflash/internal/handler"
	"github.com/greenflash/greenflash/internal/middleware"
	"github.com/greenflash/greenflash/internal/storage"
)

func SetupRoutes(app *app.App) http.Handler {
	uploads := handler.Uploads{
		MaxSize:           app.Cfg.UploadMaxSize,
		EnforceExtensions: app.Cfg.EnforceUploadExtensions,
	}

	// Handlers
	recents := handler.NewRecents(app.LogService, app.MaintenanceService)
	home := handler.NewHomeHandler(recents)
	auth := handler.NewAuthHandler(app.AuthService, app.UserService, uploads)
	user := handler.NewUserHandler(app.AuthService, app.UserService, app.PlaceService, uploads)
	place := handler.NewPlaceHandler(app.PlaceService)
	search := handler.NewSearchHandler(app.SearchService)
	logs := handler.NewLedgerHandler(app.LogService, app.LocationService, recents, app.Markdown, uploads)
	maintenance := handler.NewLedgerHandler(app.MaintenanceService, app.LocationService, recents, app.Markdown, uploads)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	// Static files
	sub, _ := fs.Sub(assets.AssetsFS, ".")
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.FS(sub))))

	if local, ok := app.Storage.(*storage.LocalStorage); ok && app.Cfg.StorageDriver == config.StorageLocal {
		prefix := app.Cfg.MediaURL + "/"
		mux.Handle("GET "+prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(local.Root()))))
	}

	mux.Handle("GET /metrics", promhttp.Handler())

	// Landing
	mux.HandleFunc("GET /{$}", middleware.RequireGuest(home.LandingPage))

	// Auth (credential POSTs rate limited)
	rateLimiter := middleware.RateLimitAuth(app.Cfg.AuthRateLimit, app.Cfg.AuthRateWindow)

	mux.HandleFunc("GET /signup", middleware.RequireGuest(auth.SignupPage))
	mux.HandleFunc("POST /signup", rateLimiter(middleware.RequireGuest(auth.Signup)))
	mux.HandleFunc("GET /login", middleware.RequireGuest(auth.LoginPage))
	mux.HandleFunc("POST /login", rateLimiter(middleware.RequireGuest(auth.Login)))
	mux.HandleFunc("GET /logout", auth.Logout)

	// Bookmarking works for anyone; anonymous callers get "not added"
	mux.HandleFunc("POST /places/save", place.Save)

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	mux.HandleFunc("GET /home", middleware.RequireAuth(home.HomePage))
	mux.HandleFunc("POST /search", middleware.RequireAuth(search.Search))

	// Profile
	mux.HandleFunc("GET /users/profile", middleware.RequireAuth(user.ProfilePage))
	mux.HandleFunc("GET /users/edit", middleware.RequireAuth(user.EditPage))
	mux.HandleFunc("POST /users/edit", middleware.RequireAuth(user.Edit))
	mux.HandleFunc("GET /users/change_password", middleware.RequireAuth(user.ChangePasswordPage))
	mux.HandleFunc("POST /users/change_password", middleware.RequireAuth(user.ChangePassword))
	mux.HandleFunc("GET /users/delete/confirm", middleware.RequireAuth(user.DeleteConfirmPage))
	mux.HandleFunc("POST /users/delete", middleware.RequireAuth(user.Delete))

	// Places
	mux.HandleFunc("GET /places", middleware.RequireAuth(place.PlacesPage))
	mux.HandleFunc("POST /places/{id}/delete", middleware.RequireAuth(place.Remove))

	// Ledgers
	ledgerRoutes(mux, "/logs", logs)
	ledgerRoutes(mux, "/maintenance", maintenance)

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/{path...}", home.NotFoundPage)

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.Config(app.Cfg),  // Config must be first (needed by SecurityHeaders and CSRF cookies)
		middleware.NonceMiddleware,  // must be before SecurityHeaders
		middleware.SecurityHeaders,
		middleware.RequestLogging,
		middleware.Flashes(app.Flashes),
		middleware.CSRFProtection,
		middleware.AuthMiddleware(app.AuthService, app.UserService),
		middleware.WithURLPath,
	)
}

type ledgerHandler interface {
	NewPage(http.ResponseWriter, *http.Request)
	Create(http.ResponseWriter, *http.Request)
	ShowPage(http.ResponseWriter, *http.Request)
	EditPage(http.ResponseWriter, *http.Request)
	Edit(http.ResponseWriter, *http.Request)
	Delete(http.ResponseWriter, *http.Request)
	AllPage(http.ResponseWriter, *http.Request)
}

func ledgerRoutes(mux *http.ServeMux, prefix string, h ledgerHandler) {
	mux.HandleFunc("GET "+prefix+"/new", middleware.RequireAuth(h.NewPage))
	mux.HandleFunc("POST "+prefix+"/new", middleware.RequireAuth(h.Create))
	mux.HandleFunc("GET "+prefix+"/all", middleware.RequireAuth(h.AllPage))
	mux.HandleFunc("GET "+prefix+"/{id}", middleware.RequireAuth(h.ShowPage))
	mux.HandleFunc("GET "+prefix+"/{id}/edit", middleware.RequireAuth(h.EditPage))
	mux.HandleFunc("POST "+prefix+"/{id}/edit", middleware.RequireAuth(h.Edit))
	mux.HandleFunc("POST "+prefix+"/{id}/delete", middleware.RequireAuth(h.Delete))
}
