package accounts

import (
	"context"

	"github.com/dmitrijs2005/speaker/internal/models"
)

// Repository persists accounts. Emails are stored as given; callers
// normalize them first.
type Repository interface {
	// Create inserts a, fills in its ID and returns it. A taken email fails
	// with common.ErrDuplicateKey.
	Create(ctx context.Context, a *models.Account) (*models.Account, error)

	GetByID(ctx context.Context, id int64) (*models.Account, error)

	// GetByEmail looks the account up through the unique by-email index.
	GetByEmail(ctx context.Context, email string) (*models.Account, error)

	// Update rewrites email, name, password hash and updated_at.
	Update(ctx context.Context, a *models.Account) error

	Exists(ctx context.Context, id int64) (bool, error)
}
