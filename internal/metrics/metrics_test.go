package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m := New(reg)

	m.ObserveTx("read-write", OutcomeCommitted, 3*time.Millisecond)
	m.ObserveAsset("allocate", nil)

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	// LockWait has no labels and is exported before any observation.
	assert.Equal(t, 4, n)

	require.Panics(t, func() { New(reg) }, "double registration must panic")
}

func TestObserveTx(t *testing.T) {
	m := New(nil)
	m.ObserveTx("read-write", OutcomeCommitted, time.Millisecond)
	m.ObserveTx("read-write", OutcomeAborted, time.Millisecond)
	m.ObserveTx("read-write", OutcomeAborted, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transactions.WithLabelValues("read-write", OutcomeCommitted)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Transactions.WithLabelValues("read-write", OutcomeAborted)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.TxDuration))
}

func TestObserveAsset(t *testing.T) {
	m := New(nil)
	m.ObserveAsset("release", nil)
	m.ObserveAsset("release", errors.New("gone"))

	expected := `
# HELP speaker_assets_operations_total Asset handle allocations and releases, by outcome.
# TYPE speaker_assets_operations_total counter
speaker_assets_operations_total{op="release",outcome="error"} 1
speaker_assets_operations_total{op="release",outcome="ok"} 1
`
	require.NoError(t, testutil.CollectAndCompare(m.AssetOps, strings.NewReader(expected)))
}
