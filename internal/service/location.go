package service

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/greenflash/greenflash/internal/repository"
)

// LocationService is the get-or-create registry of "City, State" labels.
// Labels match exactly: no case or whitespace folding.
type LocationService struct {
	locationRepository repository.LocationRepository
}

func NewLocationService(locationRepository repository.LocationRepository) *LocationService {
	return &LocationService{locationRepository: locationRepository}
}

// WithTx returns a LocationService that resolves inside tx.
func (s *LocationService) WithTx(tx *sqlx.Tx) *LocationService {
	return &LocationService{locationRepository: s.locationRepository.WithTx(tx)}
}

// Resolve returns the id for label, creating the location when needed.
// An empty label means no location and yields nil.
func (s *LocationService) Resolve(label string) (*int64, error) {
	if label == "" {
		return nil, nil
	}

	id, err := s.locationRepository.Resolve(label)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve location %q: %w", label, err)
	}
	return &id, nil
}

// Labels lists every known label, for form suggestions.
func (s *LocationService) Labels() ([]string, error) {
	return s.locationRepository.Labels()
}
