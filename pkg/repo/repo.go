// Package repo defines the generic Repository interface and list options.
package repo

import "context"

// Repository is a generic CRUD interface.
type Repository[T any, ID comparable] interface {
	Get(ctx context.Context, id ID) (T, error)
	List(ctx context.Context, opts ListOpts) ([]T, error)
	Create(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, entity T) (T, error)
	Delete(ctx context.Context, id ID) error
}

// ListOpts controls pagination and filtering for List operations.
type ListOpts struct {
	Offset int
	Limit  int
	Filter map[string]any
}

// defaultListLimit applies when ListOpts.Limit is unset.
const defaultListLimit = 100

// Normalize returns opts with the default limit applied.
func (o ListOpts) Normalize() ListOpts {
	if o.Limit <= 0 {
		o.Limit = defaultListLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
