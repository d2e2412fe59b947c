package workers

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/mocks"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestEventFanout_DeliversToEveryTarget(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	mockSink := mocks.NewMockEventSink(ctrl)

	alice := domain.NewConnectionID()
	bob := domain.NewConnectionID()

	telemetryChan := make(chan event.Event, 10)
	fanout := NewEventFanout(log, mockRegistry, nil, telemetryChan, 1*time.Second)

	// Given both members resolve to a live sink
	mockRegistry.EXPECT().SinkFor(alice).Return(mockSink, true).Times(1)
	mockRegistry.EXPECT().SinkFor(bob).Return(mockSink, true).Times(1)
	mockSink.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	evt := event.MessageBroadcast{
		Targets: []domain.ConnectionID{alice, bob},
		Room:    "lobby",
		Sender:  "alice",
		Message: "hello",
		At:      time.Now().UTC(),
	}

	// When the event is fanned out
	fanout.Fanout(context.Background(), evt)

	// Then the delivery telemetry reports both recipients
	select {
	case tele := <-telemetryChan:
		req.Equal(event.MessageFannedOutType, tele.Type)
		payload := tele.Payload.(event.MessageFannedOut)
		req.Equal(2, payload.Recipients)
		req.Equal("lobby", payload.Room)
	default:
		req.Fail("Expected a fan-out telemetry event")
	}
}

func TestEventFanout_SkipsClosedConnections(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	mockSink := mocks.NewMockEventSink(ctrl)

	alice := domain.NewConnectionID()
	ghost := domain.NewConnectionID()

	fanout := NewEventFanout(log, mockRegistry, nil, nil, 1*time.Second)

	// Given one member vanished between mutation and delivery
	mockRegistry.EXPECT().SinkFor(alice).Return(mockSink, true).Times(1)
	mockRegistry.EXPECT().SinkFor(ghost).Return(nil, false).Times(1)
	mockSink.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	evt := event.UsersUpdate{
		Targets: []domain.ConnectionID{alice, ghost},
		Room:    "lobby",
		Users:   []string{"alice"},
	}

	// When the event is fanned out
	fanout.Fanout(context.Background(), evt)

	// Then only the live sink was consumed (expectations above)
	req.True(true)
}

func TestEventFanout_SaturatedSinkEmitsDropTelemetry(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	mockSink := mocks.NewMockEventSink(ctrl)

	alice := domain.NewConnectionID()
	telemetryChan := make(chan event.Event, 10)
	fanout := NewEventFanout(log, mockRegistry, nil, telemetryChan, 1*time.Second)

	// Given a sink refusing the event
	mockRegistry.EXPECT().SinkFor(alice).Return(mockSink, true).Times(1)
	mockSink.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(errors.ErrSinkFull).Times(1)

	evt := event.UserJoined{
		Targets: []domain.ConnectionID{alice},
		Room:    "lobby",
		Notice:  "bob joined room",
	}

	// When the event is fanned out
	fanout.Fanout(context.Background(), evt)

	// Then the drop is visible in telemetry
	select {
	case tele := <-telemetryChan:
		req.Equal(event.EventDroppedType, tele.Type)
		payload := tele.Payload.(event.EventDropped)
		req.Equal("user_joined", payload.EventName)
		req.Equal("lobby", payload.Room)
	default:
		req.Fail("Expected a drop telemetry event")
	}
}

func TestEventFanout_SinkTimeout(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockIRegistry(ctrl)
	mockSink := mocks.NewMockEventSink(ctrl)

	alice := domain.NewConnectionID()
	sinkTimeout := 20 * time.Millisecond
	fanout := NewEventFanout(log, mockRegistry, nil, nil, sinkTimeout)

	mockRegistry.EXPECT().SinkFor(alice).Return(mockSink, true).Times(1)
	mockSink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, evt event.DomainEvent) error {
			<-ctx.Done()     // Waiting for timeout to trigger cancellation
			return ctx.Err() // Sending back "context deadline exceeded"
		}).
		Times(1)

	evt := event.UserLeft{
		Targets: []domain.ConnectionID{alice},
		Room:    "lobby",
		Notice:  "bob left room",
	}

	// When the sink stalls longer than the timeout
	fanout.Fanout(context.Background(), evt)

	// Then the fan-out moved on instead of blocking forever
}
