package emotions

import (
	"context"

	"github.com/dmitrijs2005/speaker/internal/models"
)

// Repository persists emotion marks. It does not check that the voice
// exists; the emotion service does that inside its transaction.
type Repository interface {
	Create(ctx context.Context, m *models.EmotionMark) (*models.EmotionMark, error)
	GetByID(ctx context.Context, id int64) (*models.EmotionMark, error)

	// ListByVoice returns marks in insertion order.
	ListByVoice(ctx context.Context, voiceID int64) ([]*models.EmotionMark, error)

	Delete(ctx context.Context, id int64) error

	// DeleteByVoice removes every mark of a voice and returns how many.
	DeleteByVoice(ctx context.Context, voiceID int64) (int64, error)
}
