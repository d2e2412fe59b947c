package services

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/runtime"
)

// IRelayService is the client-facing API of the relay. The transport layer is
// a pure consumer of this contract and never touches the registry or the
// directory directly.
type IRelayService interface {
	Connect(sink contract.EventSink) domain.ConnectionID
	Disconnect(id domain.ConnectionID)
	Dispatch(cmd domain.Command)
	MembersOf(room domain.RoomName) []string
}

type RelayService struct {
	orchestrator *runtime.Orchestrator
}

func NewRelayService(o *runtime.Orchestrator) *RelayService {
	return &RelayService{orchestrator: o}
}

func (s *RelayService) Connect(sink contract.EventSink) domain.ConnectionID {
	return s.orchestrator.Connect(sink)
}

func (s *RelayService) Disconnect(id domain.ConnectionID) {
	s.orchestrator.Disconnect(id)
}

func (s *RelayService) Dispatch(cmd domain.Command) {
	s.orchestrator.Dispatch(cmd)
}

func (s *RelayService) MembersOf(room domain.RoomName) []string {
	return s.orchestrator.MembersOf(room)
}
