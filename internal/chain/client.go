package chain

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/rand"
	"sync"
)

// Client is the on-chain capability seam. The ledger and the sync worker
// only ever talk to the chain through it, so business logic tests run
// without any blockchain connectivity.
type Client interface {
	// MintEdition creates a token for an edition run and returns its token
	// id and the submitted transaction hash.
	MintEdition(ctx context.Context, contract string, size int, priceEth float64) (tokenID int, txHash string, err error)
	// ReadSupply reads the current remaining count and unit price of a token.
	ReadSupply(ctx context.Context, contract string, tokenID int) (remaining int, priceEth float64, err error)
	// GetReceipt reports whether a submitted transaction has confirmed.
	GetReceipt(ctx context.Context, txHash string) (confirmed bool, err error)
}

// MockClient simulates the chain with a seeded generator. Receipts always
// confirm so pending transactions drain on the next sync pass.
type MockClient struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewMockClient(seed int64) *MockClient {
	return &MockClient{rng: rand.New(rand.NewSource(seed))}
}

func (m *MockClient) MintEdition(ctx context.Context, contract string, size int, priceEth float64) (int, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tokenID := m.rng.Intn(10000) + 1000
	return tokenID, m.txHash(), nil
}

func (m *MockClient) ReadSupply(ctx context.Context, contract string, tokenID int) (int, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	remaining := m.rng.Intn(380) + 100
	priceEth := 0.002 + m.rng.Float64()*0.008
	return remaining, priceEth, nil
}

func (m *MockClient) GetReceipt(ctx context.Context, txHash string) (bool, error) {
	return true, nil
}

func (m *MockClient) txHash() string {
	b := make([]byte, 32)
	m.rng.Read(b)
	return fmt.Sprintf("0x%s", hex.EncodeToString(b))
}
