package model

import (
	"time"
)

type User struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	Email        string    `db:"email"`
	Bio          string    `db:"bio"`
	ImageName    string    `db:"image_name"`
	CreatedAt    time.Time `db:"created_at"`

	// Computed fields (not in database)
	ImageURL string `db:"-"`
}

func (u *User) HasImage() bool {
	return u.ImageName != ""
}
