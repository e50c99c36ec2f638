package dispatcher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/garyjia/mrsl-intake/internal/domain/event"
)

func TestDispatch_RoutesByType(t *testing.T) {
	d := NewDispatcher()
	var got []event.Type

	d.Subscribe(event.TypeExtractionSucceeded, func(ctx context.Context, evt *event.Event) error {
		got = append(got, evt.Type)
		return nil
	})

	require.NoError(t, d.Dispatch(context.Background(), event.NewEvent(event.TypeExtractionSucceeded, "s", "")))
	require.NoError(t, d.Dispatch(context.Background(), event.NewEvent(event.TypeSubmissionFailed, "s", "")))

	assert.Equal(t, []event.Type{event.TypeExtractionSucceeded}, got)
}

func TestDispatch_AllEventsSubscriber(t *testing.T) {
	d := NewDispatcher()
	count := 0
	d.Subscribe(AllEvents, func(ctx context.Context, evt *event.Event) error {
		count++
		return nil
	})

	_ = d.Dispatch(context.Background(), event.NewEvent(event.TypeSessionCleared, "s", ""))
	_ = d.Dispatch(context.Background(), event.NewEvent(event.TypeRecordEdited, "s", ""))

	assert.Equal(t, 2, count)
}

func TestDispatch_RunsEveryHandlerAndJoinsErrors(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	d := NewDispatcher(WithLogger(zap.New(core)))
	ran := 0

	d.SubscribeNamed(event.TypeSubmissionFailed, "broken", func(ctx context.Context, evt *event.Event) error {
		ran++
		return errors.New("boom")
	})
	d.SubscribeNamed(event.TypeSubmissionFailed, "panicky", func(ctx context.Context, evt *event.Event) error {
		ran++
		panic("kaboom")
	})
	d.SubscribeNamed(event.TypeSubmissionFailed, "fine", func(ctx context.Context, evt *event.Event) error {
		ran++
		return nil
	})

	err := d.Dispatch(context.Background(), event.NewEvent(event.TypeSubmissionFailed, "s", ""))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler broken failed")
	assert.Contains(t, err.Error(), "handler panic: kaboom")
	assert.Equal(t, 3, ran)
	assert.Equal(t, 2, logs.FilterMessage("Handler error").Len())
}

func TestUnsubscribe(t *testing.T) {
	d := NewDispatcher()
	called := false
	d.SubscribeNamed(event.TypeRecordEdited, "feed", func(ctx context.Context, evt *event.Event) error {
		called = true
		return nil
	})
	d.Unsubscribe(event.TypeRecordEdited, "feed")

	require.NoError(t, d.Dispatch(context.Background(), event.NewEvent(event.TypeRecordEdited, "s", "")))
	assert.False(t, called)
}

func TestDispatch_NilEvent(t *testing.T) {
	assert.Error(t, NewDispatcher().Dispatch(context.Background(), nil))
}

func TestClose(t *testing.T) {
	d := NewDispatcher()

	require.NoError(t, d.Close())
	assert.Error(t, d.Close())
	assert.ErrorIs(t, d.Dispatch(context.Background(), event.NewEvent(event.TypeRecordEdited, "s", "")), ErrClosed)
}
