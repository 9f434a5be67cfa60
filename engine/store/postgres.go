package store

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to Postgres with the given DSN.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open postgres: %w", err)
	}
	return db, nil
}

// Migrate creates or updates all tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&ProfileRow{},
		&BookingRow{},
		&JetRow{},
		&AirportRow{},
		&FlightRow{},
		&OfferRow{},
		&CrewRow{},
		&TokenRow{},
		&SimulationRow{},
	); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}
