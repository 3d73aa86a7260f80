package wallet

import (
	"context"
	"sync"
)

// Session tracks the active wallet account by reacting to connector events.
// The first account of a sign-in event becomes the active session.
type Session struct {
	connector   Connector
	unsubscribe func()

	mu      sync.RWMutex
	account *Account
}

// NewSession creates a session manager subscribed to the given connector
func NewSession(connector Connector) *Session {
	s := &Session{connector: connector}
	s.unsubscribe = connector.Subscribe(s.handleEvent)
	return s
}

func (s *Session) handleEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Type {
	case EventSignIn:
		if len(ev.Accounts) > 0 {
			account := ev.Accounts[0]
			s.account = &account
		}
	case EventSignOut:
		s.account = nil
	}
}

// Connect triggers the connector's sign-in flow
func (s *Session) Connect(ctx context.Context) error {
	return s.connector.Connect(ctx)
}

// Disconnect signs the wallet out. Safe to call without an active session.
func (s *Session) Disconnect(ctx context.Context) error {
	return s.connector.Disconnect(ctx)
}

// Account returns the active account, if any
func (s *Session) Account() (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.account == nil {
		return Account{}, false
	}
	return *s.account, true
}

// Address returns the active account's address, or "" without a session
func (s *Session) Address() string {
	account, ok := s.Account()
	if !ok {
		return ""
	}
	return account.Address
}

// Close unsubscribes from the connector and releases it
func (s *Session) Close() error {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	return s.connector.Close()
}
