package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/BlockSavvy/jetstream-sub001/engine/domain"
)

// SimLogStore persists simulation results. Rows are append-only.
type SimLogStore struct {
	db *gorm.DB
}

// NewSimLogStore creates a SimLogStore.
func NewSimLogStore(db *gorm.DB) *SimLogStore {
	return &SimLogStore{db: db}
}

// Save writes a new simulation result. Existing rows are never touched.
func (s *SimLogStore) Save(ctx context.Context, r domain.SimResult) error {
	row := SimulationRow{
		ID:        r.ID,
		CreatedAt: r.CreatedAt,
		Type:      string(r.Type),
		Params:    r.Params,
		Metrics:   r.Metrics,
		Events:    r.Events,
		Summary:   r.Summary,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("store: save simulation %s: %w", r.ID, err)
	}
	return nil
}

// Get loads one simulation result.
func (s *SimLogStore) Get(ctx context.Context, id string) (domain.SimResult, error) {
	var row SimulationRow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.SimResult{}, fmt.Errorf("store: simulation %s: not found", id)
	}
	if err != nil {
		return domain.SimResult{}, fmt.Errorf("store: get simulation %s: %w", id, err)
	}
	return row.toDomain(), nil
}

// Recent returns the latest simulation results, newest first.
func (s *SimLogStore) Recent(ctx context.Context, limit int) ([]domain.SimResult, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []SimulationRow
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("store: recent simulations: %w", err)
	}
	out := make([]domain.SimResult, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}
