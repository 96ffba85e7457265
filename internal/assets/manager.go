package assets

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/speaker/internal/blob/core"
	"github.com/dmitrijs2005/speaker/internal/common"
	"github.com/dmitrijs2005/speaker/internal/logging"
	"github.com/dmitrijs2005/speaker/internal/metrics"
	"github.com/google/uuid"
)

// Prefix is the key namespace voice payloads are allocated under.
const Prefix = "voices/"

// Handle is the opaque reference a voice record holds to its payload.
type Handle string

func (h Handle) String() string { return string(h) }

// Valid reports whether h looks like a handle this package allocated.
func (h Handle) Valid() bool {
	return strings.HasPrefix(string(h), Prefix) && len(h) > len(Prefix)
}

// Report lists the handles that disagree between records and the blob
// store.
type Report struct {
	// Dangling handles are referenced by a record but have no payload.
	Dangling []Handle
	// Orphaned handles have a payload that no record references.
	Orphaned []Handle
}

// Clean reports whether records and payloads agree.
func (r Report) Clean() bool { return len(r.Dangling) == 0 && len(r.Orphaned) == 0 }

type Manager struct {
	store   core.Store
	metrics *metrics.Metrics
	log     logging.Logger
	now     func() time.Time
}

type Option func(*Manager)

func WithMetrics(m *metrics.Metrics) Option { return func(mgr *Manager) { mgr.metrics = m } }

func WithLogger(l logging.Logger) Option { return func(mgr *Manager) { mgr.log = l } }

// WithClock overrides the time used to date new handles.
func WithClock(now func() time.Time) Option { return func(mgr *Manager) { mgr.now = now } }

func NewManager(store core.Store, opts ...Option) *Manager {
	m := &Manager{store: store, log: logging.Nop(), now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Store returns the underlying blob store.
func (m *Manager) Store() core.Store { return m.store }

func (m *Manager) newHandle() Handle {
	d := m.now().UTC()
	return Handle(fmt.Sprintf("%s%04d/%02d/%02d/%s", Prefix, d.Year(), int(d.Month()), d.Day(), uuid.New()))
}

func (m *Manager) observe(op string, err error) {
	if m.metrics != nil {
		m.metrics.ObserveAsset(op, err)
	}
}

// Allocate stores payload under a fresh handle.
func (m *Manager) Allocate(ctx context.Context, payload io.Reader, contentType string) (Handle, error) {
	if payload == nil {
		return "", common.Invalid("payload is nil")
	}
	h := m.newHandle()
	_, err := m.store.Put(ctx, string(h), payload, core.PutOptions{ContentType: contentType})
	m.observe("allocate", err)
	if err != nil {
		return "", fmt.Errorf("allocate asset: %w", err)
	}
	m.log.Debug(ctx, "asset allocated", "handle", h)
	return h, nil
}

// Open returns the payload behind h. A missing payload is common.ErrNotFound.
func (m *Manager) Open(ctx context.Context, h Handle) (io.ReadCloser, error) {
	if !h.Valid() {
		return nil, common.Invalid("bad asset handle %q", h)
	}
	_, rc, err := m.store.Get(ctx, string(h))
	if err != nil {
		return nil, fmt.Errorf("open asset: %w", err)
	}
	return rc, nil
}

// Stat returns blob metadata for h.
func (m *Manager) Stat(ctx context.Context, h Handle) (core.Info, error) {
	if !h.Valid() {
		return core.Info{}, common.Invalid("bad asset handle %q", h)
	}
	return m.store.Head(ctx, string(h))
}

// Release deletes the payload behind h. Releasing a handle twice, or one
// whose payload never existed, is not an error.
func (m *Manager) Release(ctx context.Context, h Handle) error {
	if !h.Valid() {
		return common.Invalid("bad asset handle %q", h)
	}
	existed, err := m.store.Delete(ctx, string(h))
	m.observe("release", err)
	if err != nil {
		return fmt.Errorf("release asset: %w", err)
	}
	if !existed {
		m.log.Debug(ctx, "asset already released", "handle", h)
	}
	return nil
}

// PresignURL returns a time-limited download URL for h, if the driver can
// make one.
func (m *Manager) PresignURL(ctx context.Context, h Handle, expiry time.Duration) (string, error) {
	if !h.Valid() {
		return "", common.Invalid("bad asset handle %q", h)
	}
	return m.store.PresignURL(ctx, string(h), core.SignedURLOptions{Method: "GET", Expiry: expiry})
}

// Audit compares the handles referenced by records with the payloads in
// the blob store.
func (m *Manager) Audit(ctx context.Context, referenced []Handle) (Report, error) {
	infos, err := m.store.List(ctx, Prefix)
	if err != nil {
		return Report{}, fmt.Errorf("list assets: %w", err)
	}

	stored := make(map[Handle]struct{}, len(infos))
	for _, inf := range infos {
		stored[Handle(inf.Key)] = struct{}{}
	}
	refs := make(map[Handle]struct{}, len(referenced))
	for _, h := range referenced {
		refs[h] = struct{}{}
	}

	var r Report
	for h := range refs {
		if _, ok := stored[h]; !ok {
			r.Dangling = append(r.Dangling, h)
		}
	}
	for h := range stored {
		if _, ok := refs[h]; !ok {
			r.Orphaned = append(r.Orphaned, h)
		}
	}
	sortHandles(r.Dangling)
	sortHandles(r.Orphaned)
	return r, nil
}

func sortHandles(hs []Handle) {
	sort.Slice(hs, func(i, j int) bool { return hs[i] < hs[j] })
}
