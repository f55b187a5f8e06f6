package handler

import (
	"log/slog"
	"net/http"

	"github.com/greenflash/greenflash/internal/ctxkeys"
	"github.com/greenflash/greenflash/internal/service"
	"github.com/greenflash/greenflash/internal/ui"
	"github.com/greenflash/greenflash/internal/ui/pages"
)

// Recents builds the sidebar shown next to the search and ledger pages.
type Recents struct {
	logService         *service.LogService
	maintenanceService *service.MaintenanceService
}

func NewRecents(logService *service.LogService, maintenanceService *service.MaintenanceService) *Recents {
	return &Recents{logService: logService, maintenanceService: maintenanceService}
}

func (s *Recents) Sidebar(userID string) pages.Sidebar {
	var sidebar pages.Sidebar

	logs, err := s.logService.Recent(userID)
	if err != nil {
		slog.Error("failed to load recent logs", "error", err, "user_id", userID)
	} else {
		sidebar.Logs = service.Entries(logs)
	}

	maintenance, err := s.maintenanceService.Recent(userID)
	if err != nil {
		slog.Error("failed to load recent maintenance", "error", err, "user_id", userID)
	} else {
		sidebar.Maintenance = service.Entries(maintenance)
	}

	return sidebar
}

type HomeHandler struct {
	recents *Recents
}

func NewHomeHandler(recents *Recents) *HomeHandler {
	return &HomeHandler{recents: recents}
}

func (h *HomeHandler) LandingPage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, pages.Landing(pages.New(w, r, "Welcome")))
}

func (h *HomeHandler) HomePage(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	ui.Render(w, r, pages.Home(pages.New(w, r, "Home"), h.recents.Sidebar(userID)))
}

func (h *HomeHandler) NotFoundPage(w http.ResponseWriter, r *http.Request) {
	ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound(pages.New(w, r, "Not found")))
}
