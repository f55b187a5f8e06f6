package model

import (
	"time"
)

// Kind names a ledger. Logs and maintenance records share a shape but are
// stored, listed and authorised separately.
type Kind string

const (
	KindLog         Kind = "log"
	KindMaintenance Kind = "maintenance"
)

// Table returns the table backing the ledger.
func (k Kind) Table() string {
	switch k {
	case KindMaintenance:
		return "maintenance"
	default:
		return "logs"
	}
}

// Path returns the URL prefix of the ledger.
func (k Kind) Path() string {
	return "/" + k.Table()
}

func (k Kind) Label() string {
	if k == KindMaintenance {
		return "Maintenance"
	}
	return "Log"
}

// BodyLabel is the form label of the free-text field.
func (k Kind) BodyLabel() string {
	if k == KindMaintenance {
		return "Description"
	}
	return "Text"
}

// Entry holds the fields common to both ledgers.
type Entry struct {
	ID         int64     `db:"id"`
	UserID     string    `db:"user_id"`
	Title      string    `db:"title"`
	LocationID *int64    `db:"location_id"`
	Mileage    *int64    `db:"mileage"`
	Body       string    `db:"body"`
	Date       time.Time `db:"date"`
	ImageName  string    `db:"image_name"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`

	// Joined from locations; empty when no location is set.
	Location string `db:"location"`

	// Computed fields (not in database)
	ImageURL string `db:"-"`
}

func (e *Entry) Record() *Entry {
	return e
}

func (e *Entry) HasImage() bool {
	return e.ImageName != ""
}

type Log struct {
	Entry
}

func (Log) Kind() Kind { return KindLog }

type Maintenance struct {
	Entry
}

func (Maintenance) Kind() Kind { return KindMaintenance }
