package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/speaker/internal/common"
	"github.com/dmitrijs2005/speaker/internal/dbx"
	"github.com/dmitrijs2005/speaker/internal/logging"
	"github.com/dmitrijs2005/speaker/internal/models"
	"github.com/dmitrijs2005/speaker/internal/repositories/repomanager"
	"github.com/dmitrijs2005/speaker/internal/store/catalog"
	"github.com/dmitrijs2005/speaker/internal/store/txn"
)

// MarketplaceService publishes voices and lists the marketplace.
type MarketplaceService struct {
	coord       *txn.Coordinator
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

// NewMarketplaceService returns a MarketplaceService running on coord.
func NewMarketplaceService(coord *txn.Coordinator, m repomanager.RepositoryManager, log logging.Logger) *MarketplaceService {
	return &MarketplaceService{coord: coord, repomanager: m, log: log.With("service", "marketplace")}
}

// Publish lists voice voiceID for sale and marks it published, as one
// transaction.
//
// The voice must exist and belong to sellerID (common.ErrNotFound
// otherwise). price must be positive and description non-empty
// (common.ErrInvalidArgument). A voice can be listed once; later attempts
// fail with common.ErrAlreadyPublished.
func (s *MarketplaceService) Publish(ctx context.Context, voiceID, sellerID int64, price float64, description string) (*models.MarketplaceListing, error) {
	l, err := txn.Run(ctx, s.coord, txn.Write(catalog.Voices, catalog.Listings), func(ctx context.Context, tx dbx.DBTX) (*models.MarketplaceListing, error) {
		voices := s.repomanager.Voices(tx)
		listings := s.repomanager.Listings(tx)

		v, err := voices.GetByID(ctx, voiceID)
		if err != nil {
			return nil, err
		}
		if v.OwnerID != sellerID {
			return nil, fmt.Errorf("voice %d of seller %d: %w", voiceID, sellerID, common.ErrNotFound)
		}

		if !finite(price) || price <= 0 {
			return nil, common.Invalid("price %v must be positive", price)
		}
		desc, err := requireText("description", description)
		if err != nil {
			return nil, err
		}

		if _, err := listings.GetByVoice(ctx, voiceID); err == nil {
			return nil, fmt.Errorf("voice %d: %w", voiceID, common.ErrAlreadyPublished)
		} else if !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}

		l, err := listings.Create(ctx, &models.MarketplaceListing{
			VoiceID:     voiceID,
			SellerID:    sellerID,
			Price:       price,
			Description: desc,
			CreatedAt:   time.Now().UTC(),
		})
		if err != nil {
			if errors.Is(err, common.ErrDuplicateKey) {
				return nil, fmt.Errorf("voice %d: %w", voiceID, common.ErrAlreadyPublished)
			}
			return nil, err
		}

		if err := voices.MarkPublished(ctx, voiceID); err != nil {
			if errors.Is(err, common.ErrConflict) {
				return nil, fmt.Errorf("voice %d: %w", voiceID, common.ErrAlreadyPublished)
			}
			return nil, err
		}
		return l, nil
	})
	if err != nil {
		return nil, fmt.Errorf("publish voice %d: %w", voiceID, err)
	}

	s.log.Info(ctx, "voice published", "voice_id", voiceID, "listing_id", l.ID, "price", price)
	return l, nil
}

// ListAll returns every listing joined with its voice. A listing whose
// voice was removed after publishing has a nil Voice.
func (s *MarketplaceService) ListAll(ctx context.Context) ([]*models.ListingWithVoice, error) {
	return txn.Run(ctx, s.coord, txn.Read(catalog.Voices, catalog.Listings), func(ctx context.Context, tx dbx.DBTX) ([]*models.ListingWithVoice, error) {
		return s.repomanager.Listings(tx).ListWithVoices(ctx)
	})
}
