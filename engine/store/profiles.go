package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/BlockSavvy/jetstream-sub001/engine/domain"
)

// ProfileStore reads and writes user profiles. Enriched reads join the
// user's booking history in.
type ProfileStore struct {
	db *gorm.DB
}

// NewProfileStore creates a ProfileStore.
func NewProfileStore(db *gorm.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// travelJoinRow receives the bookings→flights join projection.
type travelJoinRow struct {
	Origin      string
	Destination string
	DepartureAt time.Time
}

// GetEnriched loads a profile with its travel history assembled from bookings.
func (s *ProfileStore) GetEnriched(ctx context.Context, id string) (domain.EnrichedProfile, error) {
	var row ProfileRow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.EnrichedProfile{}, fmt.Errorf("store: profile %s: %w", id, domain.ErrProfileNotFound)
	}
	if err != nil {
		return domain.EnrichedProfile{}, fmt.Errorf("store: get profile %s: %w", id, err)
	}

	var trips []travelJoinRow
	err = s.db.WithContext(ctx).
		Table("bookings").
		Select("flights.origin, flights.destination, flights.departure_at").
		Joins("JOIN flights ON flights.id = bookings.flight_id").
		Where("bookings.user_id = ?", id).
		Order("flights.departure_at DESC").
		Scan(&trips).Error
	if err != nil {
		return domain.EnrichedProfile{}, fmt.Errorf("store: travel history %s: %w", id, err)
	}

	history := make([]domain.TravelRecord, 0, len(trips))
	for _, t := range trips {
		history = append(history, domain.TravelRecord{
			Origin:      t.Origin,
			Destination: t.Destination,
			FlownAt:     t.DepartureAt,
		})
	}

	return domain.EnrichedProfile{
		ID:                    row.ID,
		Name:                  row.Name,
		PreferredDestinations: row.PreferredDestinations,
		TripTypes:             row.TripTypes,
		Languages:             row.Languages,
		AmenityPrefs:          row.AmenityPrefs,
		Budget:                row.Budget,
		Industry:              row.Industry,
		JobTitle:              row.JobTitle,
		Company:               row.Company,
		Expertise:             row.Expertise,
		Interests:             row.Interests,
		TravelHistory:         history,
	}, nil
}

// Save upserts a profile. Travel history is derived, never written here.
func (s *ProfileStore) Save(ctx context.Context, p domain.EnrichedProfile) error {
	row := ProfileRow{
		ID:                    p.ID,
		Name:                  p.Name,
		PreferredDestinations: p.PreferredDestinations,
		TripTypes:             p.TripTypes,
		Languages:             p.Languages,
		AmenityPrefs:          p.AmenityPrefs,
		Budget:                p.Budget,
		Industry:              p.Industry,
		JobTitle:              p.JobTitle,
		Company:               p.Company,
		Expertise:             p.Expertise,
		Interests:             p.Interests,
	}
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("store: save profile %s: %w", p.ID, err)
	}
	return nil
}
