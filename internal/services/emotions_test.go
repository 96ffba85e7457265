package services

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/dmitrijs2005/speaker/internal/common"
	"github.com/dmitrijs2005/speaker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEmotion(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.register(t, "ann@example.com")
	v, err := e.voices.Create(ctx, owner, "v1", models.VoiceCustom, strings.NewReader("x"))
	require.NoError(t, err)

	happy, err := e.emotions.Add(ctx, v.ID, "Happy", 2.0, 4.0, 70)
	require.NoError(t, err)
	assert.NotZero(t, happy.ID)

	_, err = e.emotions.Add(ctx, v.ID, "Sad", 5.0, 1.0, 50)
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	calm, err := e.emotions.Add(ctx, v.ID, "Calm", 0, 0.5, 0)
	require.NoError(t, err)

	marks, err := e.emotions.ListByVoice(ctx, v.ID)
	require.NoError(t, err)
	require.Len(t, marks, 2)
	assert.Equal(t, happy.ID, marks[0].ID)
	assert.Equal(t, calm.ID, marks[1].ID)
	assert.InDelta(t, 2.0, marks[0].StartOffset, 1e-9)
	assert.Equal(t, 70, marks[0].Intensity)
}

func TestAddEmotion_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.register(t, "ann@example.com")
	v, err := e.voices.Create(ctx, owner, "v1", models.VoiceCustom, strings.NewReader("x"))
	require.NoError(t, err)

	cases := []struct {
		name       string
		label      string
		start, end float64
		intensity  int
	}{
		{"equal offsets", "A", 1, 1, 10},
		{"negative start", "A", -1, 1, 10},
		{"intensity above range", "A", 0, 1, 101},
		{"intensity below range", "A", 0, 1, -1},
		{"empty label", " ", 0, 1, 10},
		{"nan offset", "A", math.NaN(), 1, 10},
		{"infinite end", "A", 0, math.Inf(1), 10},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := e.emotions.Add(ctx, v.ID, c.label, c.start, c.end, c.intensity)
			assert.ErrorIs(t, err, common.ErrInvalidArgument)
		})
	}

	marks, err := e.emotions.ListByVoice(ctx, v.ID)
	require.NoError(t, err)
	assert.Empty(t, marks)
}

func TestAddEmotion_UnknownVoice(t *testing.T) {
	e := newEnv(t)

	_, err := e.emotions.Add(context.Background(), 404, "Happy", 0, 1, 50)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, 0, e.count(t, "voice_emotions"))
}

func TestRemoveEmotion(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.register(t, "ann@example.com")
	v, err := e.voices.Create(ctx, owner, "v1", models.VoiceCustom, strings.NewReader("x"))
	require.NoError(t, err)
	m, err := e.emotions.Add(ctx, v.ID, "Happy", 0, 1, 50)
	require.NoError(t, err)

	require.NoError(t, e.emotions.Remove(ctx, m.ID))
	assert.ErrorIs(t, e.emotions.Remove(ctx, m.ID), common.ErrNotFound)
}
