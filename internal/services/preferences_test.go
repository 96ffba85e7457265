package services

import (
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/speaker/internal/common"
	"github.com/dmitrijs2005/speaker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferences_DefaultsThenMerge(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.register(t, "ann@example.com")

	got, err := e.preferences.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPreferences(), got)

	dark := models.ThemeDark
	got, err = e.preferences.Upsert(ctx, id, models.PreferencePatch{Theme: &dark})
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, got.Theme)
	assert.Equal(t, models.QualityHigh, got.ExportQuality)

	off := false
	got, err = e.preferences.Upsert(ctx, id, models.PreferencePatch{AutoSave: &off})
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, got.Theme, "absent fields keep their stored value")
	assert.False(t, got.AutoSave)

	got, err = e.preferences.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.Preferences{
		Theme:              models.ThemeDark,
		ExportQuality:      models.QualityHigh,
		AutoSave:           false,
		EmailNotifications: true,
	}, got)
	assert.Equal(t, 1, e.count(t, "user_preferences"))
}

func TestPreferences_UnknownAccount(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.preferences.Get(ctx, 42)
	assert.ErrorIs(t, err, common.ErrNotFound)

	dark := models.ThemeDark
	_, err = e.preferences.Upsert(ctx, 42, models.PreferencePatch{Theme: &dark})
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, 0, e.count(t, "user_preferences"))
}

func TestPreferences_RejectsUnknownValues(t *testing.T) {
	e := newEnv(t)
	id := e.register(t, "ann@example.com")

	neon := models.Theme("neon")
	_, err := e.preferences.Upsert(context.Background(), id, models.PreferencePatch{Theme: &neon})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	ultra := models.ExportQuality("ultra")
	_, err = e.preferences.Upsert(context.Background(), id, models.PreferencePatch{ExportQuality: &ultra})
	assert.ErrorIs(t, err, common.ErrInvalidArgument)
}

func TestDecodePatch(t *testing.T) {
	p, err := DecodePatch(strings.NewReader(`{"theme":"light","emailNotifications":false}`))
	require.NoError(t, err)
	require.NotNil(t, p.Theme)
	assert.Equal(t, models.ThemeLight, *p.Theme)
	require.NotNil(t, p.EmailNotifications)
	assert.False(t, *p.EmailNotifications)
	assert.Nil(t, p.ExportQuality)
	assert.Nil(t, p.AutoSave)

	for _, in := range []string{
		`{"theme":"light","fontSize":12}`,
		`{"exportQuality":"ultra"}`,
		`{"autoSave":"yes"}`,
		`not json`,
		`{} {}`,
	} {
		_, err := DecodePatch(strings.NewReader(in))
		assert.ErrorIs(t, err, common.ErrInvalidArgument, in)
	}
}
