package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/BlockSavvy/jetstream-sub001/engine/domain"
	"github.com/BlockSavvy/jetstream-sub001/pkg/repo"
)

// CrewStore reads crew member profiles. Backed by the generic repository
// since crew rows need no joins.
type CrewStore struct {
	crews *repo.GormRepo[CrewRow, string]
}

// NewCrewStore creates a CrewStore.
func NewCrewStore(db *gorm.DB) *CrewStore {
	return &CrewStore{crews: repo.NewGormRepo[CrewRow, string](db)}
}

// Get loads a crew member by id.
func (s *CrewStore) Get(ctx context.Context, id string) (domain.CrewMember, error) {
	row, err := s.crews.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.CrewMember{}, fmt.Errorf("store: crew %s: %w", id, domain.ErrCrewNotFound)
	}
	if err != nil {
		return domain.CrewMember{}, fmt.Errorf("store: get crew %s: %w", id, err)
	}
	return row.ToDomain(), nil
}

// List returns crew members with pagination.
func (s *CrewStore) List(ctx context.Context, offset, limit int) ([]domain.CrewMember, error) {
	rows, err := s.crews.List(ctx, repo.ListOpts{Offset: offset, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("store: list crews: %w", err)
	}
	out := make([]domain.CrewMember, len(rows))
	for i, row := range rows {
		out[i] = row.ToDomain()
	}
	return out, nil
}

// Save upserts a crew member.
func (s *CrewStore) Save(ctx context.Context, c domain.CrewMember) error {
	row := CrewRow{
		ID:              c.ID,
		Name:            c.Name,
		Role:            c.Role,
		Specializations: c.Specializations,
		Bio:             c.Bio,
	}
	if _, err := s.crews.Update(ctx, row); err != nil {
		return fmt.Errorf("store: save crew %s: %w", c.ID, err)
	}
	return nil
}
