// Package deposit sends funds to swap deposit addresses automatically where
// a chain sender is configured. Chains without a sender fall back to manual
// transfer instructions in the controller.
package deposit

import (
	"context"
	"fmt"
	"strings"

	"intents-swap/config"
)

// Sender sends a deposit on one blockchain
type Sender interface {
	Send(ctx context.Context, address, amount string) (string, error)
}

// Manager dispatches deposits to the configured per-chain senders
type Manager struct {
	config config.AutoDepositConfig
}

// NewManager creates a new deposit manager
func NewManager(cfg config.AutoDepositConfig) *Manager {
	return &Manager{config: cfg}
}

// CanSend reports whether an automatic deposit is possible on a chain
func (m *Manager) CanSend(chain string) bool {
	if !m.config.Enabled {
		return false
	}

	switch normalizeChain(chain) {
	case "evm":
		return m.config.EVM.Enabled
	case "solana":
		return m.config.Solana.Enabled
	default:
		return false
	}
}

// Send sends a deposit of the given human-readable amount to the address on
// the given chain and returns the transaction hash.
func (m *Manager) Send(ctx context.Context, chain, address, amount string) (string, error) {
	if !m.CanSend(chain) {
		return "", fmt.Errorf("auto-deposit is not enabled for chain: %s", chain)
	}

	switch normalizeChain(chain) {
	case "evm":
		sender, err := NewEVMSender(m.config.EVM)
		if err != nil {
			return "", err
		}
		defer sender.Close()
		return sender.Send(ctx, address, amount)
	case "solana":
		sender, err := NewSolanaSender(m.config.Solana)
		if err != nil {
			return "", err
		}
		return sender.Send(ctx, address, amount)
	default:
		return "", fmt.Errorf("auto-deposit not supported for chain: %s", chain)
	}
}

// SupportedChains returns the chains a deposit can currently be sent on
func (m *Manager) SupportedChains() []string {
	supported := make([]string, 0)

	if m.config.Enabled && m.config.EVM.Enabled {
		supported = append(supported, "eth")
	}
	if m.config.Enabled && m.config.Solana.Enabled {
		supported = append(supported, "sol")
	}

	return supported
}

func normalizeChain(chain string) string {
	switch strings.ToLower(chain) {
	case "eth", "ethereum", "base", "arb", "arbitrum", "op", "optimism", "pol", "polygon", "bsc":
		return "evm"
	case "sol", "solana":
		return "solana"
	default:
		return strings.ToLower(chain)
	}
}
