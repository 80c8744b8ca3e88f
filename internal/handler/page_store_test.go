package handler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"activity-board/pkg/logger"
)

func TestPageStore_GetReusesPage(t *testing.T) {
	s := NewPageStore(time.Hour, logger.NewNop())

	first := s.Get("a")
	again := s.Get("a")
	other := s.Get("b")

	assert.Same(t, first, again)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, s.Len())
}

func TestPageStore_SweepDropsIdlePages(t *testing.T) {
	s := NewPageStore(time.Minute, logger.NewNop())
	now := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.Get("idle")
	now = now.Add(45 * time.Second)
	s.Get("active")
	now = now.Add(30 * time.Second)

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())

	// A swept session starts over with a fresh page.
	page := s.Get("idle")
	assert.False(t, page.Snapshot().Loaded)
}

func TestPageStore_StartStop(t *testing.T) {
	s := NewPageStore(time.Nanosecond, logger.NewNop())
	s.Get("a")

	require.NoError(t, s.Start(context.Background(), 5*time.Millisecond))
	require.NoError(t, s.Start(context.Background(), 5*time.Millisecond))

	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
}
