package services

import (
	"context"
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

// Intensity bounds for emotion marks.
const (
	MinIntensity = 0
	MaxIntensity = 100
)

// EmotionService annotates voices with emotion marks.
type EmotionService struct {
	coord       *txn.Coordinator
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

// NewEmotionService returns an EmotionService running on coord.
func NewEmotionService(coord *txn.Coordinator, m repomanager.RepositoryManager, log logging.Logger) *EmotionService {
	return &EmotionService{coord: coord, repomanager: m, log: log.With("service", "emotions")}
}

// Add marks [start, end) seconds of voice voiceID with label. end must be
// greater than start and intensity within [0, 100].
func (s *EmotionService) Add(ctx context.Context, voiceID int64, label string, start, end float64, intensity int) (*models.EmotionMark, error) {
	label, err := requireText("label", label)
	if err != nil {
		return nil, err
	}
	if !finite(start) || !finite(end) {
		return nil, common.Invalid("offsets must be finite")
	}
	if start < 0 {
		return nil, common.Invalid("start offset %v is negative", start)
	}
	if end <= start {
		return nil, common.Invalid("end offset %v is not after start %v", end, start)
	}
	if intensity < MinIntensity || intensity > MaxIntensity {
		return nil, common.Invalid("intensity %d outside [%d, %d]", intensity, MinIntensity, MaxIntensity)
	}

	m, err := txn.Run(ctx, s.coord, txn.Write(catalog.Voices, catalog.Emotions), func(ctx context.Context, tx dbx.DBTX) (*models.EmotionMark, error) {
		if _, err := s.repomanager.Voices(tx).GetByID(ctx, voiceID); err != nil {
			return nil, err
		}
		return s.repomanager.Emotions(tx).Create(ctx, &models.EmotionMark{
			VoiceID:     voiceID,
			Label:       label,
			StartOffset: start,
			EndOffset:   end,
			Intensity:   intensity,
			CreatedAt:   time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("add emotion to voice %d: %w", voiceID, err)
	}

	s.log.Info(ctx, "emotion mark added", "voice_id", voiceID, "mark_id", m.ID)
	return m, nil
}

// ListByVoice returns the marks of a voice in insertion order.
func (s *EmotionService) ListByVoice(ctx context.Context, voiceID int64) ([]*models.EmotionMark, error) {
	return txn.Run(ctx, s.coord, txn.Read(catalog.Emotions), func(ctx context.Context, tx dbx.DBTX) ([]*models.EmotionMark, error) {
		return s.repomanager.Emotions(tx).ListByVoice(ctx, voiceID)
	})
}

func (s *EmotionService) Remove(ctx context.Context, id int64) error {
	err := s.coord.Do(ctx, txn.Write(catalog.Emotions), func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Emotions(tx).Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("remove emotion mark %d: %w", id, err)
	}
	s.log.Info(ctx, "emotion mark removed", "mark_id", id)
	return nil
}
