package deposit

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"

	"intents-swap/config"
	"intents-swap/pkg/amount"
)

// lamportsPerSOL decimals: 1 SOL = 1e9 lamports
const solDecimals = 9

// solanaFeeLamports is the typical fee for a single-signature transaction
const solanaFeeLamports = 5000

// SolanaSender sends native SOL deposits
type SolanaSender struct {
	config     config.SolanaConfig
	client     *rpc.Client
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey
}

// NewSolanaSender connects to the configured RPC endpoint
func NewSolanaSender(cfg config.SolanaConfig) (*SolanaSender, error) {
	if cfg.RPCUrl == "" {
		return nil, fmt.Errorf("RPC URL not configured for Solana deposits")
	}
	if cfg.PrivateKey == "" {
		return nil, fmt.Errorf("private key not configured for Solana deposits")
	}

	privateKey, err := solana.PrivateKeyFromBase58(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &SolanaSender{
		config:     cfg,
		client:     rpc.New(cfg.RPCUrl),
		privateKey: privateKey,
		publicKey:  privateKey.PublicKey(),
	}, nil
}

// Send transfers native SOL to the given address
func (s *SolanaSender) Send(ctx context.Context, address, humanAmount string) (string, error) {
	recipient, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return "", fmt.Errorf("invalid recipient address: %w", err)
	}

	base, err := amount.ParseToBase(humanAmount, solDecimals)
	if err != nil {
		return "", fmt.Errorf("invalid amount: %w", err)
	}
	lamports, err := strconv.ParseUint(base, 10, 64)
	if err != nil {
		return "", fmt.Errorf("amount out of range: %s", humanAmount)
	}

	balance, err := s.client.GetBalance(ctx, s.publicKey, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("failed to get balance: %w", err)
	}
	minRequired := lamports + solanaFeeLamports
	if balance.Value < minRequired {
		return "", fmt.Errorf("insufficient balance: have %d lamports, need %d lamports (including fees)", balance.Value, minRequired)
	}

	recent, err := s.client.GetRecentBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("failed to get recent blockhash: %w", err)
	}

	transferIx := system.NewTransferInstruction(lamports, s.publicKey, recipient).Build()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{transferIx},
		recent.Value.Blockhash,
		solana.TransactionPayer(s.publicKey),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.publicKey) {
			return &s.privateKey
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	opts := rpc.TransactionOpts{
		SkipPreflight:       s.config.SkipPreflight,
		PreflightCommitment: s.commitment(),
	}

	sig, err := s.client.SendTransactionWithOpts(ctx, tx, opts)
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	return sig.String(), nil
}

func (s *SolanaSender) commitment() rpc.CommitmentType {
	switch strings.ToLower(s.config.Commitment) {
	case "finalized":
		return rpc.CommitmentFinalized
	case "processed":
		return rpc.CommitmentProcessed
	default:
		return rpc.CommitmentConfirmed
	}
}
