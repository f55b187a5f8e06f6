package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/greenflash/greenflash/internal/model"
)

var (
	ErrPlaceNotFound = errors.New("place not found")
)

type PlaceRepository interface {
	ByID(id string) (*model.Place, error)
	// Create inserts the place unless a place with the same id exists.
	Create(place *model.Place) error
	IsBookmarked(userID, placeID string) (bool, error)
	// AddBookmark reports whether a new bookmark row was written.
	AddBookmark(userID, placeID string) (bool, error)
	RemoveBookmark(userID, placeID string) error
	Bookmarks(userID string) ([]*model.Place, error)
	CountBookmarks(userID string) (int, error)
	WithTx(tx *sqlx.Tx) PlaceRepository
}

type placeRepository struct {
	db sqlx.Ext
}

func NewPlaceRepository(db *sqlx.DB) PlaceRepository {
	return &placeRepository{db: db}
}

func (r *placeRepository) WithTx(tx *sqlx.Tx) PlaceRepository {
	return &placeRepository{db: tx}
}

func (r *placeRepository) ByID(id string) (*model.Place, error) {
	place := &model.Place{}
	err := sqlx.Get(r.db, place, `SELECT * FROM places WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlaceNotFound
	}
	if err != nil {
		return nil, err
	}
	return place, nil
}

func (r *placeRepository) Create(place *model.Place) error {
	query := `INSERT INTO places (id, category, name, url, image_url, address_0, address_1, price, phone, rating)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          ON CONFLICT (id) DO NOTHING`

	_, err := r.db.Exec(query,
		place.ID,
		place.Category,
		place.Name,
		place.URL,
		place.ImageURL,
		place.Address0,
		place.Address1,
		place.Price,
		place.Phone,
		place.Rating,
	)
	return err
}

func (r *placeRepository) IsBookmarked(userID, placeID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM user_places WHERE user_id = $1 AND place_id = $2)`
	err := sqlx.Get(r.db, &exists, query, userID, placeID)
	return exists, err
}

func (r *placeRepository) AddBookmark(userID, placeID string) (bool, error) {
	query := `INSERT INTO user_places (user_id, place_id) VALUES ($1, $2) ON CONFLICT (user_id, place_id) DO NOTHING`

	result, err := r.db.Exec(query, userID, placeID)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *placeRepository) RemoveBookmark(userID, placeID string) error {
	_, err := r.db.Exec(`DELETE FROM user_places WHERE user_id = $1 AND place_id = $2`, userID, placeID)
	return err
}

func (r *placeRepository) Bookmarks(userID string) ([]*model.Place, error) {
	var places []*model.Place
	query := `SELECT p.* FROM places p
	          JOIN user_places up ON up.place_id = p.id
	          WHERE up.user_id = $1
	          ORDER BY p.name`

	err := sqlx.Select(r.db, &places, query, userID)
	if err != nil {
		return nil, err
	}
	return places, nil
}

func (r *placeRepository) CountBookmarks(userID string) (int, error) {
	var count int
	err := sqlx.Get(r.db, &count, `SELECT COUNT(*) FROM user_places WHERE user_id = $1`, userID)
	return count, err
}
