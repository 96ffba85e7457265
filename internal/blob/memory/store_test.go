package memory

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/dmitrijs2005/speaker/internal/blob/core"
	"github.com/dmitrijs2005/speaker/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGetHeadListDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	assert.Equal(t, core.DriverMemory, s.Driver())

	md := map[string]string{"k": "v"}
	info, err := s.Put(ctx, "voices/a", bytes.NewReader([]byte("hello")), core.PutOptions{ContentType: "audio/wav", Metadata: md})
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)
	md["k"] = "changed"

	_, err = s.Put(ctx, "voices/a", bytes.NewReader([]byte("x")), core.PutOptions{})
	assert.ErrorIs(t, err, common.ErrConflict)

	h, err := s.Head(ctx, "voices/a")
	require.NoError(t, err)
	assert.Equal(t, "v", h.Metadata["k"], "stored metadata must not alias the caller's map")
	assert.Equal(t, "audio/wav", h.ContentType)

	_, rc, err := s.Get(ctx, "voices/a")
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(b))

	_, err = s.Put(ctx, "other/b", bytes.NewReader(nil), core.PutOptions{})
	require.NoError(t, err)

	list, err := s.List(ctx, "voices/")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "voices/a", list[0].Key)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "other/b", all[0].Key)

	ok, err := s.Delete(ctx, "voices/a")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Delete(ctx, "voices/a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_MissingAndUnsupported(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.Head(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, _, err = s.Get(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = s.PresignURL(ctx, "nope", core.SignedURLOptions{})
	assert.ErrorIs(t, err, core.ErrUnsupported)
}

func TestStore_PutHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Put(ctx, "k", bytes.NewReader([]byte("x")), core.PutOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
