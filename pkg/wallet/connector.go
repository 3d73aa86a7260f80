// Package wallet manages the user's wallet session. The connector is a
// collaborator boundary: it signs accounts in and out and emits typed events,
// possibly at any time (a connector may restore a session on its own during
// initialization). The session manager only depends on that contract.
package wallet

import "context"

// Event types emitted by a connector
const (
	EventSignIn  = "wallet:signIn"
	EventSignOut = "wallet:signOut"
)

// Account identifies one signed-in wallet account
type Account struct {
	Address  string `json:"address"`
	Chain    string `json:"chain"`
	Provider string `json:"provider"`
}

// Event is a typed wallet event. Sign-in events carry the signed-in
// accounts; sign-out events carry none.
type Event struct {
	Type     string
	Accounts []Account
}

// Connector is the wallet-connection collaborator
type Connector interface {
	// Connect triggers the connector's sign-in flow. Success is reported
	// through a sign-in event, not the return value.
	Connect(ctx context.Context) error
	// Disconnect signs the wallet out. Must be a safe no-op when nothing
	// is signed in.
	Disconnect(ctx context.Context) error
	// Subscribe registers an event handler and returns its unsubscribe
	// function. Handlers are invoked synchronously.
	Subscribe(handler func(Event)) (unsubscribe func())
	// Close releases everything the connector owns
	Close() error
}
