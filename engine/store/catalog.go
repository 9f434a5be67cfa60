package store

import (
	"gorm.io/gorm"

	"github.com/BlockSavvy/jetstream-sub001/pkg/repo"
)

// NewJetRepo returns a CRUD repository over the jets table.
func NewJetRepo(db *gorm.DB) *repo.GormRepo[JetRow, string] {
	return repo.NewGormRepo[JetRow, string](db)
}

// NewAirportRepo returns a CRUD repository over the airports table, keyed by
// IATA code.
func NewAirportRepo(db *gorm.DB) *repo.GormRepo[AirportRow, string] {
	return repo.NewGormRepo[AirportRow, string](db, repo.WithIDColumn[AirportRow, string]("code"))
}

// NewTokenRepo returns a CRUD repository over the fractional_tokens table.
func NewTokenRepo(db *gorm.DB) *repo.GormRepo[TokenRow, string] {
	return repo.NewGormRepo[TokenRow, string](db)
}
