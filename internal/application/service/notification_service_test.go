package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/mrsl-intake/internal/application/dispatcher"
	"github.com/garyjia/mrsl-intake/internal/domain/event"
)

func TestNotificationFeed_OnlyUserFacingEvents(t *testing.T) {
	d := dispatcher.NewDispatcher()
	feed := NewNotificationService(d, 0)
	ctx := context.Background()

	require.NoError(t, d.Dispatch(ctx, event.NewEvent(event.TypeFileAccepted, "s", "Processing...")))
	require.NoError(t, d.Dispatch(ctx, event.NewEvent(event.TypeRecordEdited, "s", "")))
	require.NoError(t, d.Dispatch(ctx, event.NewEvent(event.TypeExtractionSucceeded, "s", MsgExtracted)))
	require.NoError(t, d.Dispatch(ctx, event.NewEvent(event.TypeSubmissionFailed, "s", MsgSubmissionFailed)))

	got := feed.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, MsgExtracted, got[0].Message)
	assert.Equal(t, event.LevelSuccess, got[0].Level)
	assert.Equal(t, event.LevelError, got[1].Level)

	assert.Empty(t, feed.Drain())

	latest, ok := feed.Latest()
	require.True(t, ok)
	assert.Equal(t, MsgSubmissionFailed, latest.Message)
}

func TestNotificationFeed_Capacity(t *testing.T) {
	d := dispatcher.NewDispatcher()
	feed := NewNotificationService(d, 2)

	for _, msg := range []string{"one", "two", "three"} {
		_ = d.Dispatch(context.Background(), event.NewEvent(event.TypeExtractionFailed, "s", msg))
	}

	got := feed.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, "two", got[0].Message)
	assert.Equal(t, "three", got[1].Message)
}

func TestNotificationFeed_Empty(t *testing.T) {
	feed := NewNotificationService(dispatcher.NewDispatcher(), 0)

	_, ok := feed.Latest()
	assert.False(t, ok)
	assert.NotNil(t, feed.Drain())
}
