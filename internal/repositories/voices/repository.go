package voices

import (
	"context"

	"github.com/dmitrijs2005/speaker/internal/models"
)

type Repository interface {
	// Create inserts v. A missing owner fails with common.ErrNotFound.
	Create(ctx context.Context, v *models.VoiceAsset) (*models.VoiceAsset, error)

	GetByID(ctx context.Context, id int64) (*models.VoiceAsset, error)

	// ListByOwner returns the owner's voices in creation order.
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.VoiceAsset, error)

	ListAll(ctx context.Context) ([]*models.VoiceAsset, error)

	// MarkPublished flips published from false to true. Already published or
	// missing voices are reported as errors.
	MarkPublished(ctx context.Context, id int64) error

	// Delete removes the voice row; common.ErrNotFound if it is absent.
	Delete(ctx context.Context, id int64) error
}
