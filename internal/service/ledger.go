package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/greenflash/greenflash/internal/db"
	"github.com/greenflash/greenflash/internal/model"
	"github.com/greenflash/greenflash/internal/repository"
	"github.com/greenflash/greenflash/internal/validation"
)

// RecentLimit is how many entries the sidebars show per ledger.
const RecentLimit = 5

// DateLayout is the form encoding of an entry date.
const DateLayout = "2006-01-02"

// EntryInput is the validated ledger form. Maintenance records also
// require a location.
type EntryInput struct {
	Title    string `form:"title" validate:"required,max=100"`
	Location string `form:"location" validate:"max=100"`
	Mileage  *int64 `form:"mileage" validate:"omitempty,min=0"`
	Body     string `form:"body" validate:"required"`
	Date     string `form:"date" validate:"required,datetime=2006-01-02"`
}

// LedgerService implements one ledger on top of its repository. The same
// code serves logs and maintenance records.
type LedgerService[T any, P repository.Record[T]] struct {
	db                 *sqlx.DB
	ledgerRepository   repository.LedgerRepository[T]
	locationService    *LocationService
	mediaService       *MediaService
	kind               model.Kind
}

type (
	LogService         = LedgerService[model.Log, *model.Log]
	MaintenanceService = LedgerService[model.Maintenance, *model.Maintenance]
)

func NewLogService(
	db *sqlx.DB,
	logRepository repository.LedgerRepository[model.Log],
	locationService *LocationService,
	mediaService *MediaService,
) *LogService {
	return newLedgerService[model.Log](db, logRepository, locationService, mediaService)
}

func NewMaintenanceService(
	db *sqlx.DB,
	maintenanceRepository repository.LedgerRepository[model.Maintenance],
	locationService *LocationService,
	mediaService *MediaService,
) *MaintenanceService {
	return newLedgerService[model.Maintenance](db, maintenanceRepository, locationService, mediaService)
}

func newLedgerService[T any, P repository.Record[T]](
	db *sqlx.DB,
	ledgerRepository repository.LedgerRepository[T],
	locationService *LocationService,
	mediaService *MediaService,
) *LedgerService[T, P] {
	var zero T
	return &LedgerService[T, P]{
		db:                 db,
		ledgerRepository:   ledgerRepository,
		locationService:    locationService,
		mediaService:       mediaService,
		kind:               P(&zero).Kind(),
	}
}

func (s *LedgerService[T, P]) Kind() model.Kind {
	return s.kind
}

// validate trims in and checks it, returning the parsed date. The location
// label is kept as typed.
func (s *LedgerService[T, P]) validate(in *EntryInput) (time.Time, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Date = strings.TrimSpace(in.Date)

	err := validation.Struct(in)
	if err != nil {
		return time.Time{}, err
	}

	if s.kind == model.KindMaintenance && in.Location == "" {
		return time.Time{}, validation.Errors{"location": "This field is required."}
	}

	return time.Parse(DateLayout, in.Date)
}

// Create stores a new entry owned by userID. The location is resolved and
// the row written in one transaction; the image is removed again if that
// transaction fails.
func (s *LedgerService[T, P]) Create(userID string, in EntryInput, upload *Upload) (*T, error) {
	date, err := s.validate(&in)
	if err != nil {
		return nil, err
	}

	rec := new(T)
	e := P(rec).Record()
	now := time.Now()
	e.UserID = userID
	e.Title = in.Title
	e.Mileage = in.Mileage
	e.Body = in.Body
	e.Date = date
	e.CreatedAt = now
	e.UpdatedAt = now

	if upload != nil {
		e.ImageName, err = s.mediaService.Save(userID, upload)
		if err != nil {
			return nil, err
		}
	}

	err = db.WithTx(s.db, func(tx *sqlx.Tx) error {
		e.LocationID, err = s.locationService.WithTx(tx).Resolve(in.Location)
		if err != nil {
			return err
		}
		return s.ledgerRepository.WithTx(tx).Create(rec)
	})
	if err != nil {
		if e.ImageName != "" {
			_ = s.mediaService.Delete(userID, e.ImageName)
		}
		return nil, fmt.Errorf("failed to create %s: %w", s.kind, err)
	}

	e.Location = in.Location
	e.ImageURL = s.mediaService.URL(userID, e.ImageName)
	return rec, nil
}

// owned fails with ErrUnauthorized unless id is one of userID's records.
func (s *LedgerService[T, P]) owned(userID string, id int64) error {
	ok, err := s.ledgerRepository.Owned(userID, id)
	if err != nil {
		return fmt.Errorf("failed to check ownership: %w", err)
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

// Read returns the entry when userID owns it.
func (s *LedgerService[T, P]) Read(userID string, id int64) (*T, error) {
	err := s.owned(userID, id)
	if err != nil {
		return nil, err
	}

	rec, err := s.ledgerRepository.ByID(userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	s.setImageURL(rec)
	return rec, nil
}

// Edit replaces every editable field of the entry. Either all fields are
// updated or none: a failure leaves the row and its image as they were.
func (s *LedgerService[T, P]) Edit(userID string, id int64, in EntryInput, upload *Upload) (*T, error) {
	err := s.owned(userID, id)
	if err != nil {
		return nil, err
	}

	date, err := s.validate(&in)
	if err != nil {
		return nil, err
	}

	var (
		rec    *T
		staged *StagedImage
	)
	err = db.WithTx(s.db, func(tx *sqlx.Tx) error {
		records := s.ledgerRepository.WithTx(tx)

		rec, err = records.ByID(userID, id)
		if err != nil {
			return err
		}

		e := P(rec).Record()
		e.Title = in.Title
		e.Mileage = in.Mileage
		e.Body = in.Body
		e.Date = date
		e.UpdatedAt = time.Now()

		e.LocationID, err = s.locationService.WithTx(tx).Resolve(in.Location)
		if err != nil {
			return err
		}
		e.Location = in.Location

		if upload != nil {
			staged, err = s.mediaService.Stage(userID, e.ImageName, upload)
			if err != nil {
				return err
			}
			e.ImageName = staged.Filename
		}

		return records.Update(rec)
	})
	if err != nil {
		if staged != nil {
			staged.Rollback()
		}
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to edit %s: %w", s.kind, err)
	}

	if staged != nil {
		staged.Commit()
	}

	s.setImageURL(rec)
	return rec, nil
}

// Delete removes the entry and its image.
func (s *LedgerService[T, P]) Delete(userID string, id int64) error {
	err := s.owned(userID, id)
	if err != nil {
		return err
	}

	rec, err := s.ledgerRepository.ByID(userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get %s: %w", s.kind, err)
	}

	err = s.ledgerRepository.Delete(userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s: %w", s.kind, err)
	}

	return s.mediaService.Delete(userID, P(rec).Record().ImageName)
}

// Recent returns the user's latest entries by date.
func (s *LedgerService[T, P]) Recent(userID string) ([]*T, error) {
	recs, err := s.ledgerRepository.Recent(userID, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent %s: %w", s.kind, err)
	}

	for _, rec := range recs {
		s.setImageURL(rec)
	}
	return recs, nil
}

func (s *LedgerService[T, P]) All(userID string) ([]*T, error) {
	recs, err := s.ledgerRepository.All(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.kind, err)
	}

	for _, rec := range recs {
		s.setImageURL(rec)
	}
	return recs, nil
}

func (s *LedgerService[T, P]) setImageURL(rec *T) {
	e := P(rec).Record()
	e.ImageURL = s.mediaService.URL(e.UserID, e.ImageName)
}

// Entries unwraps records to their shared fields, for templates.
func Entries[T any, P repository.Record[T]](recs []*T) []*model.Entry {
	entries := make([]*model.Entry, len(recs))
	for i, rec := range recs {
		entries[i] = P(rec).Record()
	}
	return entries
}
