package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a Get misses.
var ErrNotFound = errors.New("entity not found")

// GormRepo is a generic GORM-backed repository. T must be a GORM model with
// its primary key tagged; ID is the primary key type.
type GormRepo[T any, ID comparable] struct {
	db    *gorm.DB
	idKey string
}

// GormOption configures a GormRepo.
type GormOption[T any, ID comparable] func(*GormRepo[T, ID])

// WithIDColumn sets the primary key column used in lookups (default "id").
func WithIDColumn[T any, ID comparable](col string) GormOption[T, ID] {
	return func(r *GormRepo[T, ID]) { r.idKey = col }
}

// NewGormRepo creates a GORM-backed repository.
func NewGormRepo[T any, ID comparable](db *gorm.DB, opts ...GormOption[T, ID]) *GormRepo[T, ID] {
	r := &GormRepo[T, ID]{db: db, idKey: "id"}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Compile-time interface check.
var _ Repository[any, string] = (*GormRepo[any, string])(nil)

func (r *GormRepo[T, ID]) Get(ctx context.Context, id ID) (T, error) {
	var entity T
	err := r.db.WithContext(ctx).Where(r.idKey+" = ?", id).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity, fmt.Errorf("repo: get %v: %w", id, ErrNotFound)
	}
	if err != nil {
		return entity, fmt.Errorf("repo: get %v: %w", id, err)
	}
	return entity, nil
}

func (r *GormRepo[T, ID]) List(ctx context.Context, opts ListOpts) ([]T, error) {
	opts = opts.Normalize()
	q := r.db.WithContext(ctx).Offset(opts.Offset).Limit(opts.Limit)
	for k, v := range opts.Filter {
		q = q.Where(k+" = ?", v)
	}
	var items []T
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("repo: list: %w", err)
	}
	return items, nil
}

func (r *GormRepo[T, ID]) Create(ctx context.Context, entity T) (T, error) {
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return entity, fmt.Errorf("repo: create: %w", err)
	}
	return entity, nil
}

func (r *GormRepo[T, ID]) Update(ctx context.Context, entity T) (T, error) {
	if err := r.db.WithContext(ctx).Save(&entity).Error; err != nil {
		return entity, fmt.Errorf("repo: update: %w", err)
	}
	return entity, nil
}

func (r *GormRepo[T, ID]) Delete(ctx context.Context, id ID) error {
	var entity T
	if err := r.db.WithContext(ctx).Where(r.idKey+" = ?", id).Delete(&entity).Error; err != nil {
		return fmt.Errorf("repo: delete %v: %w", id, err)
	}
	return nil
}
