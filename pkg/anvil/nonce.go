package anvil

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// PendingNonceReader seeds a NonceManager.
type PendingNonceReader interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
}

// NonceManager hands out consecutive nonces per address so several
// transactions can be sent before any of them is mined. The first nonce of
// an address comes from the pending state.
type NonceManager struct {
	mu     sync.Mutex
	client PendingNonceReader
	next   map[common.Address]uint64
}

// NewNonceManager creates a manager seeded from client.
func NewNonceManager(client PendingNonceReader) *NonceManager {
	return &NonceManager{
		client: client,
		next:   make(map[common.Address]uint64),
	}
}

// NextNonce returns the nonce to use for the next transaction of account.
func (m *NonceManager) NextNonce(ctx context.Context, account common.Address) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	nonce, ok := m.next[account]
	if !ok {
		pending, err := m.client.PendingNonceAt(ctx, account)
		if err != nil {
			return 0, fmt.Errorf("failed to get pending nonce for %s: %w", account.Hex(), err)
		}
		nonce = pending
	}
	m.next[account] = nonce + 1
	return nonce, nil
}

// Reset forgets account so the next nonce is read from the chain again.
func (m *NonceManager) Reset(account common.Address) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.next, account)
}
