package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"

	"intents-swap/config"
)

// EnvConnector is a connector backed by identities from configuration: a
// NEAR account id, an EVM private key, a Solana private key, in any
// combination. There is no modal to drive, so Connect signs in directly with
// every configured identity.
type EnvConnector struct {
	mu        sync.Mutex
	accounts  []Account
	handlers  map[int]func(Event)
	nextID    int
	connected bool
	closed    bool
}

// NewEnvConnector derives accounts from the configured keys
func NewEnvConnector(cfg config.WalletConfig) (*EnvConnector, error) {
	c := &EnvConnector{handlers: make(map[int]func(Event))}

	if cfg.NearAccountID != "" {
		c.accounts = append(c.accounts, Account{
			Address:  cfg.NearAccountID,
			Chain:    "near",
			Provider: "env",
		})
	}

	if cfg.EVMPrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.EVMPrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid EVM private key: %w", err)
		}
		publicKey, ok := key.Public().(*ecdsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("failed to get EVM public key")
		}
		c.accounts = append(c.accounts, Account{
			Address:  crypto.PubkeyToAddress(*publicKey).Hex(),
			Chain:    "eth",
			Provider: "env",
		})
	}

	if cfg.SolanaPrivateKey != "" {
		key, err := solana.PrivateKeyFromBase58(cfg.SolanaPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("invalid Solana private key: %w", err)
		}
		c.accounts = append(c.accounts, Account{
			Address:  key.PublicKey().String(),
			Chain:    "sol",
			Provider: "env",
		})
	}

	return c, nil
}

// Restore signs in automatically when identities are configured, mirroring
// connectors that resume a previous session during initialization. Without
// identities it does nothing.
func (c *EnvConnector) Restore() {
	c.mu.Lock()
	if len(c.accounts) == 0 || c.connected {
		c.mu.Unlock()
		return
	}
	c.connected = true
	accounts := append([]Account(nil), c.accounts...)
	c.mu.Unlock()

	c.emit(Event{Type: EventSignIn, Accounts: accounts})
}

// Connect signs in with every configured identity
func (c *EnvConnector) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("connector is closed")
	}
	if len(c.accounts) == 0 {
		c.mu.Unlock()
		return fmt.Errorf("no wallet identities configured. Set INTENTS_SWAP_NEAR_ACCOUNT_ID, INTENTS_SWAP_EVM_PRIVATE_KEY or INTENTS_SWAP_SOLANA_PRIVATE_KEY")
	}
	c.connected = true
	accounts := append([]Account(nil), c.accounts...)
	c.mu.Unlock()

	c.emit(Event{Type: EventSignIn, Accounts: accounts})
	return nil
}

// Disconnect signs out. A no-op when nothing is signed in.
func (c *EnvConnector) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return nil
	}
	c.connected = false
	c.mu.Unlock()

	c.emit(Event{Type: EventSignOut})
	return nil
}

// Subscribe registers an event handler
func (c *EnvConnector) Subscribe(handler func(Event)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	c.handlers[id] = handler

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.handlers, id)
	}
}

// Close drops all handlers and forgets the session
func (c *EnvConnector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handlers = make(map[int]func(Event))
	c.connected = false
	c.closed = true
	return nil
}

func (c *EnvConnector) emit(ev Event) {
	c.mu.Lock()
	handlers := make([]func(Event), 0, len(c.handlers))
	for _, h := range c.handlers {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}
