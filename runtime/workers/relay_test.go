package workers

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/mocks"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRelayWorker_ForwardsRouterEventsInOrder(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRouter := mocks.NewMockIRouter(ctrl)

	alice := domain.NewConnectionID()
	cmd := domain.JoinRoomCommand{Conn: alice, Room: "lobby", Username: "alice"}

	produced := []event.DomainEvent{
		event.RoomJoined{Target: alice, Room: "lobby", Users: []string{"alice"}},
		event.UsersUpdate{Targets: []domain.ConnectionID{alice}, Room: "lobby", Users: []string{"alice"}},
	}
	mockRouter.EXPECT().Handle(cmd).Return(produced).Times(1)

	commands := make(chan domain.Command, 1)
	events := make(chan event.DomainEvent, 10)
	worker := NewRelayWorker(mockRouter, commands, events, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	// When a command is submitted
	commands <- cmd

	// Then both events come out, in production order
	for _, want := range produced {
		select {
		case got := <-events:
			req.Equal(want, got)
		case <-time.After(1 * time.Second):
			req.Fail("Event never reached the channel")
		}
	}
}

func TestRelayWorker_StopsOnClosedChannel(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRouter := mocks.NewMockIRouter(ctrl)

	commands := make(chan domain.Command)
	events := make(chan event.DomainEvent, 1)
	worker := NewRelayWorker(mockRouter, commands, events, log)

	done := make(chan error, 1)
	go func() { done <- worker.Run(context.Background()) }()

	// When the command channel closes
	close(commands)

	// Then the worker terminates cleanly
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(500 * time.Millisecond):
		req.Fail("Worker should have stopped on closed channel")
	}
}
