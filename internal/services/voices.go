package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dmitrijs2005/speaker/internal/assets"
	"github.com/dmitrijs2005/speaker/internal/common"
	"github.com/dmitrijs2005/speaker/internal/dbx"
	"github.com/dmitrijs2005/speaker/internal/logging"
	"github.com/dmitrijs2005/speaker/internal/models"
	"github.com/dmitrijs2005/speaker/internal/repositories/repomanager"
	"github.com/dmitrijs2005/speaker/internal/store/catalog"
	"github.com/dmitrijs2005/speaker/internal/store/txn"
)

// EmotionPolicy decides what happens to a voice's emotion marks when the
// voice is removed.
type EmotionPolicy string

const (
	// EmotionsCascade deletes the marks with the voice.
	EmotionsCascade EmotionPolicy = "cascade"
	// EmotionsOrphan keeps the marks; they reference a missing voice.
	EmotionsOrphan EmotionPolicy = "orphan"
)

// ParseEmotionPolicy accepts "cascade" or "orphan"; empty means cascade.
func ParseEmotionPolicy(s string) (EmotionPolicy, error) {
	switch EmotionPolicy(s) {
	case "", EmotionsCascade:
		return EmotionsCascade, nil
	case EmotionsOrphan:
		return EmotionsOrphan, nil
	}
	return "", common.Invalid("unknown emotion policy %q", s)
}

// PayloadContentType is recorded on every stored voice payload.
const PayloadContentType = "application/octet-stream"

// VoiceService manages voice records and their audio payloads.
type VoiceService struct {
	coord       *txn.Coordinator
	repomanager repomanager.RepositoryManager
	assets      *assets.Manager
	policy      EmotionPolicy
	log         logging.Logger
}

// VoiceOption customizes a VoiceService.
type VoiceOption func(*VoiceService)

// WithEmotionPolicy chooses what Remove does with a voice's emotion marks.
func WithEmotionPolicy(p EmotionPolicy) VoiceOption {
	return func(s *VoiceService) { s.policy = p }
}

// NewVoiceService returns a VoiceService storing payloads through am. The
// emotion policy defaults to EmotionsCascade.
func NewVoiceService(coord *txn.Coordinator, m repomanager.RepositoryManager, am *assets.Manager, log logging.Logger, opts ...VoiceOption) *VoiceService {
	s := &VoiceService{
		coord:       coord,
		repomanager: m,
		assets:      am,
		policy:      EmotionsCascade,
		log:         log.With("service", "voices"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create stores payload and inserts a voice that references it. If the
// insert fails the payload is released again before returning.
func (s *VoiceService) Create(ctx context.Context, ownerID int64, name string, kind models.VoiceKind, payload io.Reader) (*models.VoiceAsset, error) {
	name, err := requireText("name", name)
	if err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, common.Invalid("unknown voice kind %q", kind)
	}
	if payload == nil {
		return nil, common.Invalid("payload is nil")
	}

	h, err := s.assets.Allocate(ctx, payload, PayloadContentType)
	if err != nil {
		return nil, fmt.Errorf("create voice: %w", err)
	}

	v, err := txn.Run(ctx, s.coord, txn.Write(catalog.Voices), func(ctx context.Context, tx dbx.DBTX) (*models.VoiceAsset, error) {
		return s.repomanager.Voices(tx).Create(ctx, &models.VoiceAsset{
			OwnerID:     ownerID,
			Name:        name,
			Kind:        kind,
			AssetHandle: h.String(),
			CreatedAt:   time.Now().UTC(),
		})
	})
	if err != nil {
		if relErr := s.assets.Release(context.WithoutCancel(ctx), h); relErr != nil {
			s.log.Warn(ctx, "release after failed create", "handle", h, "error", relErr)
		}
		return nil, fmt.Errorf("create voice: %w", err)
	}

	s.log.Info(ctx, "voice created", "voice_id", v.ID, "owner_id", ownerID)
	return v, nil
}

func (s *VoiceService) Get(ctx context.Context, id int64) (*models.VoiceAsset, error) {
	return txn.Run(ctx, s.coord, txn.Read(catalog.Voices), func(ctx context.Context, tx dbx.DBTX) (*models.VoiceAsset, error) {
		return s.repomanager.Voices(tx).GetByID(ctx, id)
	})
}

// ListByOwner returns the owner's voices in creation order.
func (s *VoiceService) ListByOwner(ctx context.Context, ownerID int64) ([]*models.VoiceAsset, error) {
	return txn.Run(ctx, s.coord, txn.Read(catalog.Voices), func(ctx context.Context, tx dbx.DBTX) ([]*models.VoiceAsset, error) {
		return s.repomanager.Voices(tx).ListByOwner(ctx, ownerID)
	})
}

// ListUnpublished returns the owner's voices that are not on the
// marketplace yet.
func (s *VoiceService) ListUnpublished(ctx context.Context, ownerID int64) ([]*models.VoiceAsset, error) {
	all, err := s.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]*models.VoiceAsset, 0, len(all))
	for _, v := range all {
		if !v.Published {
			out = append(out, v)
		}
	}
	return out, nil
}

// Remove deletes voice id and, under the cascade policy, its emotion marks.
// The payload is released first, inside the transaction and before the row
// is deleted. A failed release is logged and does not stop the delete.
func (s *VoiceService) Remove(ctx context.Context, id int64) error {
	marks, err := txn.Run(ctx, s.coord, txn.Write(catalog.Voices, catalog.Emotions), func(ctx context.Context, tx dbx.DBTX) (int64, error) {
		voices := s.repomanager.Voices(tx)
		v, err := voices.GetByID(ctx, id)
		if err != nil {
			return 0, err
		}

		h := assets.Handle(v.AssetHandle)
		if relErr := s.assets.Release(ctx, h); relErr != nil {
			s.log.Warn(ctx, "release of removed voice failed", "voice_id", id, "handle", h, "error", relErr)
		}

		var n int64
		if s.policy == EmotionsCascade {
			if n, err = s.repomanager.Emotions(tx).DeleteByVoice(ctx, id); err != nil {
				return 0, err
			}
		}
		if err := voices.Delete(ctx, id); err != nil {
			return 0, err
		}
		return n, nil
	})
	if err != nil {
		return fmt.Errorf("remove voice %d: %w", id, err)
	}

	s.log.Info(ctx, "voice removed", "voice_id", id, "marks_removed", marks)
	return nil
}

// OpenPayload returns the audio bytes of voice id. The caller closes the
// reader.
func (s *VoiceService) OpenPayload(ctx context.Context, id int64) (io.ReadCloser, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.assets.Open(ctx, assets.Handle(v.AssetHandle))
}

// PayloadURL returns a time-limited download URL for voice id when the blob
// driver supports one.
func (s *VoiceService) PayloadURL(ctx context.Context, id int64, expiry time.Duration) (string, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.assets.PresignURL(ctx, assets.Handle(v.AssetHandle), expiry)
}

// DayCount is the number of voices created on one UTC day.
type DayCount struct {
	Day   string // 2006-01-02
	Count int
}

// VoiceStats summarizes an owner's voices.
type VoiceStats struct {
	Total     int
	Published int
	ByKind    map[models.VoiceKind]int
	PerDay    []DayCount
}

// Stats counts the owner's voices by kind, publication state and creation
// day. PerDay is sorted by day; every known kind appears in ByKind.
func (s *VoiceService) Stats(ctx context.Context, ownerID int64) (*VoiceStats, error) {
	all, err := s.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	st := &VoiceStats{ByKind: make(map[models.VoiceKind]int, len(models.VoiceKinds()))}
	for _, k := range models.VoiceKinds() {
		st.ByKind[k] = 0
	}
	days := make(map[string]int)
	for _, v := range all {
		st.Total++
		st.ByKind[v.Kind]++
		if v.Published {
			st.Published++
		}
		days[v.CreatedAt.UTC().Format(time.DateOnly)]++
	}
	for d, n := range days {
		st.PerDay = append(st.PerDay, DayCount{Day: d, Count: n})
	}
	sort.Slice(st.PerDay, func(i, j int) bool { return st.PerDay[i].Day < st.PerDay[j].Day })
	return st, nil
}

// AuditAssets compares voice handles with the stored payloads.
func (s *VoiceService) AuditAssets(ctx context.Context) (assets.Report, error) {
	handles, err := txn.Run(ctx, s.coord, txn.Read(catalog.Voices), func(ctx context.Context, tx dbx.DBTX) ([]assets.Handle, error) {
		all, err := s.repomanager.Voices(tx).ListAll(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]assets.Handle, 0, len(all))
		for _, v := range all {
			out = append(out, assets.Handle(v.AssetHandle))
		}
		return out, nil
	})
	if err != nil {
		return assets.Report{}, err
	}

	r, err := s.assets.Audit(ctx, handles)
	if err != nil {
		return assets.Report{}, err
	}
	if !r.Clean() {
		s.log.Warn(ctx, "asset audit found mismatches", "dangling", len(r.Dangling), "orphaned", len(r.Orphaned))
	}
	return r, nil
}
