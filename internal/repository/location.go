package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/greenflash/greenflash/internal/model"
)

type LocationRepository interface {
	// Resolve returns the id of the location labelled exactly label,
	// creating it when absent.
	Resolve(label string) (int64, error)
	Labels() ([]string, error)
	All() ([]*model.Location, error)
	WithTx(tx *sqlx.Tx) LocationRepository
}

type locationRepository struct {
	db sqlx.Ext
}

func NewLocationRepository(db *sqlx.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) WithTx(tx *sqlx.Tx) LocationRepository {
	return &locationRepository{db: tx}
}

func (r *locationRepository) Resolve(label string) (int64, error) {
	id, err := r.byLabel(label)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	// ON CONFLICT keeps a concurrent insert of the same label from failing
	// (and from aborting an enclosing postgres transaction).
	query := `INSERT INTO locations (label) VALUES ($1) ON CONFLICT (label) DO NOTHING RETURNING id`
	err = sqlx.Get(r.db, &id, query, label)
	if errors.Is(err, sql.ErrNoRows) {
		return r.byLabel(label)
	}
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (r *locationRepository) byLabel(label string) (int64, error) {
	var id int64
	err := sqlx.Get(r.db, &id, `SELECT id FROM locations WHERE label = $1`, label)
	return id, err
}

func (r *locationRepository) Labels() ([]string, error) {
	var labels []string
	err := sqlx.Select(r.db, &labels, `SELECT label FROM locations ORDER BY label`)
	if err != nil {
		return nil, err
	}
	return labels, nil
}

func (r *locationRepository) All() ([]*model.Location, error) {
	var locations []*model.Location
	err := sqlx.Select(r.db, &locations, `SELECT * FROM locations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return locations, nil
}
