package listings

import (
	"context"

	"github.com/dmitrijs2005/speaker/internal/models"
)

type Repository interface {
	// Create inserts l. A second listing for the same voice fails with
	// common.ErrDuplicateKey.
	Create(ctx context.Context, l *models.MarketplaceListing) (*models.MarketplaceListing, error)

	// GetByVoice returns the listing of a voice or common.ErrNotFound.
	GetByVoice(ctx context.Context, voiceID int64) (*models.MarketplaceListing, error)

	// ListAll returns every listing in publication order.
	ListAll(ctx context.Context) ([]*models.MarketplaceListing, error)

	// ListWithVoices left-joins listings with their voices. Listings whose
	// voice no longer exists carry a nil Voice.
	ListWithVoices(ctx context.Context) ([]*models.ListingWithVoice, error)
}
