package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/BlockSavvy/jetstream-sub001/engine/domain"
	"github.com/BlockSavvy/jetstream-sub001/pkg/repo"
)

// FlightStore reads flights with their jets attached.
type FlightStore struct {
	db   *gorm.DB
	jets *repo.GormRepo[JetRow, string]
}

// NewFlightStore creates a FlightStore.
func NewFlightStore(db *gorm.DB) *FlightStore {
	return &FlightStore{db: db, jets: repo.NewGormRepo[JetRow, string](db)}
}

// Get loads a flight and its jet.
func (s *FlightStore) Get(ctx context.Context, id string) (domain.Flight, error) {
	var row FlightRow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Flight{}, fmt.Errorf("store: flight %s: %w", id, domain.ErrFlightNotFound)
	}
	if err != nil {
		return domain.Flight{}, fmt.Errorf("store: get flight %s: %w", id, err)
	}

	jet, err := s.jets.Get(ctx, row.JetID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return domain.Flight{}, fmt.Errorf("store: jet for flight %s: %w", id, err)
	}
	return row.toDomain(jet), nil
}

// Upcoming lists scheduled flights departing at or after from.
func (s *FlightStore) Upcoming(ctx context.Context, from time.Time, limit int) ([]domain.Flight, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []FlightRow
	err := s.db.WithContext(ctx).
		Where("status = ? AND departure_at >= ?", string(domain.FlightScheduled), from).
		Order("departure_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("store: upcoming flights: %w", err)
	}

	out := make([]domain.Flight, 0, len(rows))
	for _, row := range rows {
		jet, err := s.jets.Get(ctx, row.JetID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("store: jet for flight %s: %w", row.ID, err)
		}
		out = append(out, row.toDomain(jet))
	}
	return out, nil
}

// Save upserts a flight row. The jet must already exist.
func (s *FlightStore) Save(ctx context.Context, f domain.Flight) error {
	if !domain.ValidFlightStatuses[f.Status] {
		return fmt.Errorf("store: save flight %s: unknown status %q", f.ID, f.Status)
	}
	row := FlightRow{
		ID:             f.ID,
		JetID:          f.Jet.ID,
		Origin:         f.Origin,
		Destination:    f.Destination,
		DepartureAt:    f.DepartureAt,
		ArrivalAt:      f.ArrivalAt,
		AvailableSeats: f.AvailableSeats,
		BasePrice:      f.BasePrice,
		Status:         string(f.Status),
	}
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("store: save flight %s: %w", f.ID, err)
	}
	return nil
}
