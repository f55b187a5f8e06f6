package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/greenflash/greenflash/internal/db"
	"github.com/greenflash/greenflash/internal/model"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
)

type UserRepository interface {
	Create(user *model.User) error
	ByID(id string) (*model.User, error)
	ByUsername(username string) (*model.User, error)
	Update(user *model.User) error
	Delete(id string) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	query := `INSERT INTO users (id, username, password_hash, email, bio, image_name, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.Email,
		user.Bio,
		user.ImageName,
		user.CreatedAt,
	)
	if db.IsUniqueViolation(err) {
		return ErrDuplicateUsername
	}
	return err
}

func (r *userRepository) ByID(id string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE id = $1`

	err := r.db.Get(user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *userRepository) ByUsername(username string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE username = $1`

	err := r.db.Get(user, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *userRepository) Update(user *model.User) error {
	query := `UPDATE users SET username = $1, password_hash = $2, email = $3, bio = $4, image_name = $5 WHERE id = $6`

	result, err := r.db.Exec(query,
		user.Username,
		user.PasswordHash,
		user.Email,
		user.Bio,
		user.ImageName,
		user.ID,
	)
	if db.IsUniqueViolation(err) {
		return ErrDuplicateUsername
	}
	if err != nil {
		return err
	}

	return expectRow(result, ErrUserNotFound)
}

// Delete removes the user. Logs, maintenance records and bookmarks
// go with it through ON DELETE CASCADE.
func (r *userRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}

	return expectRow(result, ErrUserNotFound)
}

// expectRow maps "no row touched" to notFound.
func expectRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
