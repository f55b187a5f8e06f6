package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/greenflash/greenflash/internal/ctxkeys"
	"github.com/greenflash/greenflash/internal/markdown"
	"github.com/greenflash/greenflash/internal/repository"
	"github.com/greenflash/greenflash/internal/service"
	"github.com/greenflash/greenflash/internal/ui"
	"github.com/greenflash/greenflash/internal/ui/pages"
	"github.com/greenflash/greenflash/internal/validation"
)

// LedgerHandler serves one ledger's pages; logs and maintenance each get an
// instance.
type LedgerHandler[T any, P repository.Record[T]] struct {
	ledgerService   *service.LedgerService[T, P]
	locationService *service.LocationService
	recents         *Recents
	markdown        *markdown.Parser
	uploads         Uploads
}

func NewLedgerHandler[T any, P repository.Record[T]](
	ledgerService *service.LedgerService[T, P],
	locationService *service.LocationService,
	recents *Recents,
	md *markdown.Parser,
	uploads Uploads,
) *LedgerHandler[T, P] {
	return &LedgerHandler[T, P]{
		ledgerService:   ledgerService,
		locationService: locationService,
		recents:         recents,
		markdown:        md,
		uploads:         uploads,
	}
}

// entryInput maps the posted form onto the typed input, returning field
// errors the validator cannot express.
func entryInput(r *http.Request) (service.EntryInput, validation.Errors) {
	in := service.EntryInput{
		Title:    r.FormValue("title"),
		Location: r.FormValue("location"),
		Body:     r.FormValue("body"),
		Date:     r.FormValue("date"),
	}

	raw := strings.TrimSpace(r.FormValue("mileage"))
	if raw != "" {
		m, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return in, validation.Errors{"mileage": "Must be a whole number."}
		}
		in.Mileage = &m
	}

	return in, nil
}

func formFromInput(r *http.Request, in service.EntryInput) pages.EntryForm {
	return pages.EntryForm{
		Title:    in.Title,
		Location: in.Location,
		Mileage:  r.FormValue("mileage"),
		Body:     in.Body,
		Date:     in.Date,
	}
}

func (h *LedgerHandler[T, P]) recordID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// unauthorized sends the caller to the ledger's create screen.
func (h *LedgerHandler[T, P]) unauthorized(w http.ResponseWriter, r *http.Request) {
	ui.AddFlash(w, r, ui.FlashDanger, "UNAUTHORIZED.")
	http.Redirect(w, r, h.ledgerService.Kind().Path()+"/new", http.StatusSeeOther)
}

func (h *LedgerHandler[T, P]) notFound(w http.ResponseWriter, r *http.Request) {
	ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound(pages.New(w, r, "Not found")))
}

func (h *LedgerHandler[T, P]) renderForm(w http.ResponseWriter, r *http.Request, status int, id int64, form pages.EntryForm, err error) {
	userID := ctxkeys.UserID(r.Context())
	kind := h.ledgerService.Kind()

	title := "New " + kind.Label()
	if id != 0 {
		title = "Edit " + kind.Label()
	}

	locations, lerr := h.locationService.Labels()
	if lerr != nil {
		slog.Error("failed to list locations", "error", lerr)
	}

	p := pages.New(w, r, title).WithErrors(err)
	ui.RenderStatus(w, r, status, pages.LedgerForm(p, kind, id, form, locations, h.recents.Sidebar(userID)))
}

func (h *LedgerHandler[T, P]) NewPage(w http.ResponseWriter, r *http.Request) {
	form := pages.EntryForm{Date: time.Now().Format(service.DateLayout)}
	h.renderForm(w, r, http.StatusOK, 0, form, nil)
}

func (h *LedgerHandler[T, P]) Create(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	kind := h.ledgerService.Kind()

	in, verrs := entryInput(r)
	if verrs != nil {
		h.renderForm(w, r, http.StatusUnprocessableEntity, 0, formFromInput(r, in), verrs)
		return
	}

	upload, closeUpload, err := h.uploads.image(r)
	if err != nil {
		h.renderForm(w, r, http.StatusUnprocessableEntity, 0, formFromInput(r, in), err)
		return
	}
	defer closeUpload()

	rec, err := h.ledgerService.Create(userID, in, upload)
	if err != nil {
		if errors.As(err, &verrs) {
			h.renderForm(w, r, http.StatusUnprocessableEntity, 0, formFromInput(r, in), err)
			return
		}
		slog.Error("failed to create entry", "error", err, "kind", kind, "user_id", userID)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	id := P(rec).Record().ID
	slog.Info("entry created", "kind", kind, "id", id, "user_id", userID)
	ui.AddFlash(w, r, ui.FlashSuccess, kind.Label()+" saved.")
	http.Redirect(w, r, fmt.Sprintf("%s/%d", kind.Path(), id), http.StatusSeeOther)
}

func (h *LedgerHandler[T, P]) ShowPage(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	kind := h.ledgerService.Kind()

	id, ok := h.recordID(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	rec, err := h.ledgerService.Read(userID, id)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			h.unauthorized(w, r)
			return
		}
		slog.Error("failed to read entry", "error", err, "kind", kind, "id", id)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	entry := P(rec).Record()
	p := pages.New(w, r, entry.Title)
	ui.Render(w, r, pages.LedgerDetail(p, kind, entry, h.markdown.HTML(entry.Body), h.recents.Sidebar(userID)))
}

func (h *LedgerHandler[T, P]) EditPage(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	id, ok := h.recordID(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	rec, err := h.ledgerService.Read(userID, id)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			h.unauthorized(w, r)
			return
		}
		slog.Error("failed to read entry", "error", err, "kind", h.ledgerService.Kind(), "id", id)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.renderForm(w, r, http.StatusOK, id, pages.FormFromEntry(P(rec).Record()), nil)
}

func (h *LedgerHandler[T, P]) Edit(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	kind := h.ledgerService.Kind()

	id, ok := h.recordID(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	in, verrs := entryInput(r)
	if verrs != nil {
		h.renderForm(w, r, http.StatusUnprocessableEntity, id, formFromInput(r, in), verrs)
		return
	}

	upload, closeUpload, err := h.uploads.image(r)
	if err != nil {
		h.renderForm(w, r, http.StatusUnprocessableEntity, id, formFromInput(r, in), err)
		return
	}
	defer closeUpload()

	_, err = h.ledgerService.Edit(userID, id, in, upload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			h.unauthorized(w, r)
		case errors.Is(err, service.ErrNotFound):
			h.notFound(w, r)
		case errors.As(err, &verrs):
			h.renderForm(w, r, http.StatusUnprocessableEntity, id, formFromInput(r, in), err)
		default:
			slog.Error("failed to edit entry", "error", err, "kind", kind, "id", id)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	ui.AddFlash(w, r, ui.FlashSuccess, kind.Label()+" updated.")
	http.Redirect(w, r, fmt.Sprintf("%s/%d", kind.Path(), id), http.StatusSeeOther)
}

func (h *LedgerHandler[T, P]) Delete(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	kind := h.ledgerService.Kind()

	id, ok := h.recordID(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	err := h.ledgerService.Delete(userID, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			h.unauthorized(w, r)
		case errors.Is(err, service.ErrNotFound):
			h.notFound(w, r)
		default:
			slog.Error("failed to delete entry", "error", err, "kind", kind, "id", id)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	slog.Info("entry deleted", "kind", kind, "id", id, "user_id", userID)
	ui.AddFlash(w, r, ui.FlashSuccess, kind.Label()+" deleted.")
	http.Redirect(w, r, kind.Path()+"/new", http.StatusSeeOther)
}

func (h *LedgerHandler[T, P]) AllPage(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	kind := h.ledgerService.Kind()

	recs, err := h.ledgerService.All(userID)
	if err != nil {
		slog.Error("failed to list entries", "error", err, "kind", kind, "user_id", userID)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	p := pages.New(w, r, "All "+kind.Label())
	ui.Render(w, r, pages.LedgerList(p, kind, service.Entries[T, P](recs), h.recents.Sidebar(userID)))
}
