package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/greenflash/greenflash/internal/model"
)

var (
	ErrRecordNotFound = errors.New("record not found")
)

// Record is satisfied by *model.Log and *model.Maintenance.
type Record[T any] interface {
	*T
	Record() *model.Entry
	Kind() model.Kind
}

// LedgerRepository stores one kind of ledger entry. Every lookup is scoped
// to the owning user.
type LedgerRepository[T any] interface {
	Create(rec *T) error
	ByID(userID string, id int64) (*T, error)
	// Owned reports whether record id exists and belongs to userID.
	Owned(userID string, id int64) (bool, error)
	Update(rec *T) error
	Delete(userID string, id int64) error
	Recent(userID string, limit int) ([]*T, error)
	All(userID string) ([]*T, error)
	WithTx(tx *sqlx.Tx) LedgerRepository[T]
}

type ledgerRepository[T any, P Record[T]] struct {
	db    sqlx.Ext
	table string
}

func NewLogRepository(db *sqlx.DB) LedgerRepository[model.Log] {
	return newLedgerRepository[model.Log](db)
}

func NewMaintenanceRepository(db *sqlx.DB) LedgerRepository[model.Maintenance] {
	return newLedgerRepository[model.Maintenance](db)
}

func newLedgerRepository[T any, P Record[T]](db sqlx.Ext) *ledgerRepository[T, P] {
	var zero T
	return &ledgerRepository[T, P]{
		db:    db,
		table: P(&zero).Kind().Table(),
	}
}

func (r *ledgerRepository[T, P]) WithTx(tx *sqlx.Tx) LedgerRepository[T] {
	return &ledgerRepository[T, P]{db: tx, table: r.table}
}

// selectQuery joins the location label onto each row.
func (r *ledgerRepository[T, P]) selectQuery(where string) string {
	return fmt.Sprintf(`SELECT r.*, COALESCE(l.label, '') AS location
	          FROM %s r
	          LEFT JOIN locations l ON l.id = r.location_id
	          WHERE %s`, r.table, where)
}

func (r *ledgerRepository[T, P]) Create(rec *T) error {
	e := P(rec).Record()

	query := fmt.Sprintf(`INSERT INTO %s (user_id, title, location_id, mileage, body, date, image_name, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`, r.table)

	return sqlx.Get(r.db, &e.ID, query,
		e.UserID,
		e.Title,
		e.LocationID,
		e.Mileage,
		e.Body,
		e.Date,
		e.ImageName,
		e.CreatedAt,
		e.UpdatedAt,
	)
}

func (r *ledgerRepository[T, P]) ByID(userID string, id int64) (*T, error) {
	rec := new(T)

	err := sqlx.Get(r.db, rec, r.selectQuery("r.id = $1 AND r.user_id = $2"), id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	return rec, nil
}

func (r *ledgerRepository[T, P]) Owned(userID string, id int64) (bool, error) {
	var owned bool
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1 AND user_id = $2)`, r.table)
	err := sqlx.Get(r.db, &owned, query, id, userID)
	return owned, err
}

func (r *ledgerRepository[T, P]) Update(rec *T) error {
	e := P(rec).Record()

	query := fmt.Sprintf(`UPDATE %s
	          SET title = $1, location_id = $2, mileage = $3, body = $4, date = $5, image_name = $6, updated_at = $7
	          WHERE id = $8 AND user_id = $9`, r.table)

	result, err := r.db.Exec(query,
		e.Title,
		e.LocationID,
		e.Mileage,
		e.Body,
		e.Date,
		e.ImageName,
		e.UpdatedAt,
		e.ID,
		e.UserID,
	)
	if err != nil {
		return err
	}

	return expectRow(result, ErrRecordNotFound)
}

func (r *ledgerRepository[T, P]) Delete(userID string, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.table)

	result, err := r.db.Exec(query, id, userID)
	if err != nil {
		return err
	}

	return expectRow(result, ErrRecordNotFound)
}

func (r *ledgerRepository[T, P]) Recent(userID string, limit int) ([]*T, error) {
	var recs []*T
	query := r.selectQuery("r.user_id = $1") + ` ORDER BY r.date DESC, r.id DESC LIMIT $2`

	err := sqlx.Select(r.db, &recs, query, userID, limit)
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *ledgerRepository[T, P]) All(userID string) ([]*T, error) {
	var recs []*T
	query := r.selectQuery("r.user_id = $1") + ` ORDER BY r.date DESC, r.id DESC`

	err := sqlx.Select(r.db, &recs, query, userID)
	if err != nil {
		return nil, err
	}
	return recs, nil
}
