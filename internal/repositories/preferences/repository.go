package preferences

import (
	"context"

	"github.com/dmitrijs2005/speaker/internal/models"
)

// Repository stores at most one preference row per account.
type Repository interface {
	// Get returns the stored row or common.ErrNotFound.
	Get(ctx context.Context, accountID int64) (*models.PreferenceSet, error)

	// Put replaces the row for p.AccountID, creating it when absent.
	Put(ctx context.Context, p *models.PreferenceSet) error
}
