package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BlockSavvy/jetstream-sub001/engine/domain"
)

// OfferStore manages JetShare offers and their status lifecycle.
type OfferStore struct {
	db *gorm.DB
}

// NewOfferStore creates an OfferStore.
func NewOfferStore(db *gorm.DB) *OfferStore {
	return &OfferStore{db: db}
}

// Get loads an offer by id.
func (s *OfferStore) Get(ctx context.Context, id string) (domain.JetShareOffer, error) {
	var row OfferRow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.JetShareOffer{}, fmt.Errorf("store: offer %s: %w", id, domain.ErrOfferNotFound)
	}
	if err != nil {
		return domain.JetShareOffer{}, fmt.Errorf("store: get offer %s: %w", id, err)
	}
	return row.toDomain(), nil
}

// Open lists open offers, newest first.
func (s *OfferStore) Open(ctx context.Context, limit int) ([]domain.JetShareOffer, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []OfferRow
	err := s.db.WithContext(ctx).
		Where("status = ?", string(domain.OfferOpen)).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("store: open offers: %w", err)
	}
	out := make([]domain.JetShareOffer, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

// Create validates and persists a new open offer, assigning an id if empty.
func (s *OfferStore) Create(ctx context.Context, o domain.JetShareOffer) (domain.JetShareOffer, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.Status = domain.OfferOpen
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	if err := domain.ValidateOffer(o); err != nil {
		return domain.JetShareOffer{}, fmt.Errorf("store: create offer: %w", err)
	}
	row := offerRowFrom(o)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.JetShareOffer{}, fmt.Errorf("store: create offer %s: %w", o.ID, err)
	}
	return o, nil
}

// Accept claims an open offer for actingUserID.
func (s *OfferStore) Accept(ctx context.Context, id, actingUserID string) (domain.JetShareOffer, error) {
	return s.transition(ctx, id, domain.OfferAccepted, actingUserID)
}

// Cancel withdraws an open offer. Only the creator may cancel.
func (s *OfferStore) Cancel(ctx context.Context, id, actingUserID string) (domain.JetShareOffer, error) {
	return s.transition(ctx, id, domain.OfferCancelled, actingUserID)
}

// Complete settles an accepted offer after the shared flight.
func (s *OfferStore) Complete(ctx context.Context, id, actingUserID string) (domain.JetShareOffer, error) {
	return s.transition(ctx, id, domain.OfferCompleted, actingUserID)
}

// transition applies a guarded status change inside a transaction. The update
// is conditional on the status the transaction read, so when two claims race
// only the first commit changes the row; the loser updates zero rows and gets
// ErrInvalidTransition.
func (s *OfferStore) transition(ctx context.Context, id string, next domain.OfferStatus, actingUserID string) (domain.JetShareOffer, error) {
	var out domain.JetShareOffer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row OfferRow
		err := tx.Where("id = ?", id).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("offer %s: %w", id, domain.ErrOfferNotFound)
		}
		if err != nil {
			return err
		}

		offer := row.toDomain()
		if err := domain.ValidateOfferTransition(offer, next, actingUserID); err != nil {
			return err
		}

		updates := map[string]any{"status": string(next)}
		if next == domain.OfferAccepted {
			updates["matched_user_id"] = actingUserID
			offer.MatchedUserID = actingUserID
		}
		res := tx.Model(&OfferRow{}).
			Where("id = ? AND status = ?", id, row.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("offer %s claimed concurrently: %w", id, domain.ErrInvalidTransition)
		}
		offer.Status = next
		out = offer
		return nil
	})
	if err != nil {
		return domain.JetShareOffer{}, fmt.Errorf("store: %s offer: %w", next, err)
	}
	return out, nil
}
