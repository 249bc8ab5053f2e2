package blockchain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/trebuchet-org/treb-kit/internal/usecase"
	"github.com/trebuchet-org/treb-kit/pkg/deterministic"
)

// DefaultPollInterval is how often WaitMined asks for a receipt
const DefaultPollInterval = time.Second

// DialerAdapter opens JSON-RPC connections with ethclient
type DialerAdapter struct {
	pollInterval time.Duration
}

// NewDialerAdapter creates a new dialer
func NewDialerAdapter() *DialerAdapter {
	return &DialerAdapter{pollInterval: DefaultPollInterval}
}

// Dial connects to rpcURL
func (d *DialerAdapter) Dial(ctx context.Context, rpcURL string) (usecase.ChainClient, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}
	return NewClientAdapter(client, d.pollInterval), nil
}

// ChainBackend is the part of ethclient the client adapter needs
type ChainBackend interface {
	deterministic.BootstrapClient
	Close()
}

// ClientAdapter adds receipt polling on top of a chain backend
type ClientAdapter struct {
	ChainBackend
	pollInterval time.Duration
}

// NewClientAdapter wraps backend
func NewClientAdapter(backend ChainBackend, pollInterval time.Duration) *ClientAdapter {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &ClientAdapter{ChainBackend: backend, pollInterval: pollInterval}
}

// WaitMined polls for the receipt of hash until it exists or ctx is done
func (c *ClientAdapter) WaitMined(ctx context.Context, hash common.Hash) (*usecase.ReceiptInfo, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.TransactionReceipt(ctx, hash)
		if err == nil {
			return &usecase.ReceiptInfo{
				BlockNumber: receipt.BlockNumber.Uint64(),
				GasUsed:     receipt.GasUsed,
				Success:     receipt.Status == types.ReceiptStatusSuccessful,
			}, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("failed to get receipt: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Ensure the adapters implement the interfaces
var (
	_ usecase.ChainDialer = (*DialerAdapter)(nil)
	_ usecase.ChainClient = (*ClientAdapter)(nil)
)
