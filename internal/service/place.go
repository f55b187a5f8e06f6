package service

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/greenflash/greenflash/internal/db"
	"github.com/greenflash/greenflash/internal/model"
	"github.com/greenflash/greenflash/internal/repository"
	"github.com/greenflash/greenflash/internal/validation"
)

// PlaceInput is a search result the user asked to keep.
type PlaceInput struct {
	ID       string  `json:"placeId" validate:"required,max=255"`
	Category string  `json:"category"`
	Name     string  `json:"name" validate:"required"`
	URL      string  `json:"url"`
	ImageURL string  `json:"image_url"`
	Address0 string  `json:"address_0"`
	Address1 string  `json:"address_1"`
	Price    string  `json:"price"`
	Phone    string  `json:"phone"`
	Rating   float64 `json:"rating"`
}

func (in PlaceInput) place() *model.Place {
	return &model.Place{
		ID:       in.ID,
		Category: in.Category,
		Name:     in.Name,
		URL:      in.URL,
		ImageURL: in.ImageURL,
		Address0: in.Address0,
		Address1: in.Address1,
		Price:    in.Price,
		Phone:    in.Phone,
		Rating:   in.Rating,
	}
}

type PlaceService struct {
	db              *sqlx.DB
	placeRepository repository.PlaceRepository
}

func NewPlaceService(db *sqlx.DB, placeRepository repository.PlaceRepository) *PlaceService {
	return &PlaceService{
		db:              db,
		placeRepository: placeRepository,
	}
}

// Save adds the place to the catalog if it is new and bookmarks it for
// userID. An empty userID (anonymous caller) changes nothing.
func (s *PlaceService) Save(userID string, in PlaceInput) (string, error) {
	if userID == "" {
		return model.PlaceNotAdded, nil
	}

	err := validation.Struct(in)
	if err != nil {
		return "", err
	}

	result := model.PlaceAlreadySaved
	err = db.WithTx(s.db, func(tx *sqlx.Tx) error {
		places := s.placeRepository.WithTx(tx)

		_, err := places.ByID(in.ID)
		if errors.Is(err, repository.ErrPlaceNotFound) {
			err = places.Create(in.place())
		}
		if err != nil {
			return err
		}

		added, err := places.AddBookmark(userID, in.ID)
		if err != nil {
			return err
		}
		if added {
			result = model.PlaceAdded
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to save place: %w", err)
	}

	return result, nil
}

// Remove drops the bookmark. The catalog entry stays for other users.
func (s *PlaceService) Remove(userID, placeID string) error {
	_, err := s.placeRepository.ByID(placeID)
	if err != nil {
		if errors.Is(err, repository.ErrPlaceNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get place: %w", err)
	}

	err = s.placeRepository.RemoveBookmark(userID, placeID)
	if err != nil {
		return fmt.Errorf("failed to remove bookmark: %w", err)
	}
	return nil
}

func (s *PlaceService) Places(userID string) ([]*model.Place, error) {
	return s.placeRepository.Bookmarks(userID)
}

func (s *PlaceService) Count(userID string) (int, error) {
	return s.placeRepository.CountBookmarks(userID)
}
