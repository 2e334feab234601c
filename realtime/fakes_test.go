package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"solarena/lifecycle"
	"solarena/models"
)

// recordedCall captures one service invocation, including the state of
// the context it arrived on.
type recordedCall struct {
	Wallet string
	CtxErr error
	Data   json.RawMessage
}

// fakeService stands in for the orchestrator behind the hub.
type fakeService struct {
	mu       sync.Mutex
	session  *models.GameSession
	moveErr  error
	moves    []recordedCall
	forfeits []recordedCall
}

func (f *fakeService) GetSession(ctx context.Context, sessionID uint) (*models.GameSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil || f.session.ID != sessionID {
		return nil, lifecycle.ErrSessionNotFound
	}
	dup := *f.session
	return &dup, nil
}

func (f *fakeService) SubmitMove(ctx context.Context, sessionID uint, wallet string, moveData json.RawMessage) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moves = append(f.moves, recordedCall{Wallet: wallet, CtxErr: ctx.Err(), Data: moveData})
	if f.moveErr != nil {
		return nil, f.moveErr
	}
	return json.RawMessage(`{"applied":true}`), nil
}

func (f *fakeService) Forfeit(ctx context.Context, sessionID uint, quitter string) (*models.GameSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forfeits = append(f.forfeits, recordedCall{Wallet: quitter, CtxErr: ctx.Err()})
	dup := *f.session
	return &dup, nil
}

func (f *fakeService) moveCalls() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.moves...)
}

func (f *fakeService) forfeitCalls() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.forfeits...)
}

type relayedEvent struct {
	SessionID uint
	Event     string
	Payload   interface{}
}

// fakeRelay is an in-memory lifecycle.Channel; subscribed handlers run
// inline on Publish.
type fakeRelay struct {
	mu       sync.Mutex
	joined   []uint
	events   []relayedEvent
	handlers map[string][]lifecycle.Handler
}

func newFakeRelay() *fakeRelay {
	return &fakeRelay{handlers: make(map[string][]lifecycle.Handler)}
}

func (f *fakeRelay) Join(ctx context.Context, sessionID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joined = append(f.joined, sessionID)
	return nil
}

func (f *fakeRelay) Publish(ctx context.Context, sessionID uint, event string, payload interface{}) error {
	f.mu.Lock()
	f.events = append(f.events, relayedEvent{SessionID: sessionID, Event: event, Payload: payload})
	handlers := append([]lifecycle.Handler(nil), f.handlers[channelName(sessionID, event)]...)
	f.mu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	for _, handler := range handlers {
		handler(data)
	}
	return nil
}

func (f *fakeRelay) Subscribe(ctx context.Context, sessionID uint, event string, handler lifecycle.Handler) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := channelName(sessionID, event)
	f.handlers[key] = append(f.handlers[key], handler)
	return func() {}, nil
}

func (f *fakeRelay) published(sessionID uint, event string) []interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	var payloads []interface{}
	for _, e := range f.events {
		if e.SessionID == sessionID && e.Event == event {
			payloads = append(payloads, e.Payload)
		}
	}
	return payloads
}
