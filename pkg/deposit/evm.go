package deposit

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"intents-swap/config"
	"intents-swap/pkg/amount"
)

// nativeDecimals is the precision of the chain's native coin (wei)
const nativeDecimals = 18

// ERC20 transfer function ABI
const erc20TransferABI = `[{"constant":false,"inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"}]`

// EVMSender sends deposits on EVM-compatible blockchains
type EVMSender struct {
	config     config.EVMConfig
	client     *ethclient.Client
	privateKey *ecdsa.PrivateKey
}

// NewEVMSender connects to the configured RPC endpoint
func NewEVMSender(cfg config.EVMConfig) (*EVMSender, error) {
	if cfg.RPCUrl == "" {
		return nil, fmt.Errorf("RPC URL not configured for EVM deposits")
	}
	if cfg.PrivateKey == "" {
		return nil, fmt.Errorf("private key not configured for EVM deposits")
	}

	client, err := ethclient.Dial(cfg.RPCUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &EVMSender{
		config:     cfg,
		client:     client,
		privateKey: privateKey,
	}, nil
}

// Send transfers the amount to the given address. For the native coin the
// address is just the recipient; for ERC20 tokens the format is
// "recipient|tokenContract".
func (e *EVMSender) Send(ctx context.Context, address, humanAmount string) (string, error) {
	parts := strings.Split(address, "|")
	recipientAddr := parts[0]
	var tokenContract string
	if len(parts) > 1 {
		tokenContract = parts[1]
	}

	if !common.IsHexAddress(recipientAddr) {
		return "", fmt.Errorf("invalid recipient address: %s", recipientAddr)
	}

	publicKey, ok := e.privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return "", fmt.Errorf("failed to get public key")
	}
	fromAddress := crypto.PubkeyToAddress(*publicKey)

	nonce, err := e.client.PendingNonceAt(ctx, fromAddress)
	if err != nil {
		return "", fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := e.gasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get gas price: %w", err)
	}

	var tx *types.Transaction
	if tokenContract == "" {
		tx, err = e.nativeTransfer(ctx, fromAddress, recipientAddr, humanAmount, nonce, gasPrice)
	} else {
		tx, err = e.erc20Transfer(ctx, fromAddress, recipientAddr, tokenContract, humanAmount, nonce, gasPrice)
	}
	if err != nil {
		return "", err
	}

	if err := e.client.SendTransaction(ctx, tx); err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	return tx.Hash().Hex(), nil
}

func (e *EVMSender) nativeTransfer(ctx context.Context, from common.Address, to, humanAmount string, nonce uint64, gasPrice *big.Int) (*types.Transaction, error) {
	toAddress := common.HexToAddress(to)

	value, err := parseWei(humanAmount)
	if err != nil {
		return nil, err
	}

	balance, err := e.client.BalanceAt(ctx, from, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	if balance.Cmp(value) < 0 {
		return nil, fmt.Errorf("insufficient balance: have %s wei, need %s wei", balance.String(), value.String())
	}

	gasLimit := uint64(21000)
	if e.config.GasLimit != 0 {
		gasLimit = e.config.GasLimit
	}

	tx := types.NewTransaction(nonce, toAddress, value, gasLimit, gasPrice, nil)
	return e.sign(tx)
}

func (e *EVMSender) erc20Transfer(ctx context.Context, from common.Address, to, tokenContract, humanAmount string, nonce uint64, gasPrice *big.Int) (*types.Transaction, error) {
	if !common.IsHexAddress(tokenContract) {
		return nil, fmt.Errorf("invalid token contract address: %s", tokenContract)
	}
	toAddress := common.HexToAddress(to)
	tokenAddress := common.HexToAddress(tokenContract)

	// Token amounts are converted at 18 decimals; tokens with other
	// precisions need the amount pre-scaled by the caller.
	value, err := parseWei(humanAmount)
	if err != nil {
		return nil, err
	}

	parsedABI, err := abi.JSON(strings.NewReader(erc20TransferABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}

	data, err := parsedABI.Pack("transfer", toAddress, value)
	if err != nil {
		return nil, fmt.Errorf("failed to pack transfer data: %w", err)
	}

	gasLimit := uint64(100000)
	if e.config.GasLimit != 0 {
		gasLimit = e.config.GasLimit
	} else {
		msg := ethereum.CallMsg{From: from, To: &tokenAddress, Data: data}
		if estimated, err := e.client.EstimateGas(ctx, msg); err == nil {
			gasLimit = estimated * 120 / 100
		}
	}

	tx := types.NewTransaction(nonce, tokenAddress, big.NewInt(0), gasLimit, gasPrice, data)
	return e.sign(tx)
}

func (e *EVMSender) sign(tx *types.Transaction) (*types.Transaction, error) {
	chainID := big.NewInt(e.config.ChainID)
	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(chainID), e.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signedTx, nil
}

func (e *EVMSender) gasPrice(ctx context.Context) (*big.Int, error) {
	if e.config.GasPrice != 0 {
		return big.NewInt(e.config.GasPrice), nil
	}
	return e.client.SuggestGasPrice(ctx)
}

// Close closes the client connection
func (e *EVMSender) Close() {
	if e.client != nil {
		e.client.Close()
	}
}

func parseWei(humanAmount string) (*big.Int, error) {
	base, err := amount.ParseToBase(humanAmount, nativeDecimals)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	value, ok := new(big.Int).SetString(base, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", humanAmount)
	}
	return value, nil
}
