package memory

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/coin/foundation/blockchain/wallet"
)

// Wallets represents an in memory wallet store. This implements the
// wallet.Store interface.
type Wallets struct {
	mu      sync.RWMutex
	wallets map[string]wallet.Wallet
	order   []string
}

// NewWallets constructs a Wallets value for use.
func NewWallets() *Wallets {
	return &Wallets{
		wallets: make(map[string]wallet.Wallet),
	}
}

// Add stores a new wallet.
func (m *Wallets) Add(w wallet.Wallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.wallets[w.ID]; exists {
		return fmt.Errorf("wallet %s already exists", w.ID)
	}

	m.wallets[w.ID] = w
	m.order = append(m.order, w.ID)

	return nil
}

// ByID returns the wallet with the specified id.
func (m *Wallets) ByID(id string) (wallet.Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, exists := m.wallets[id]
	if !exists {
		return wallet.Wallet{}, wallet.ErrNotFound
	}

	return w, nil
}

// All returns every wallet in creation order.
func (m *Wallets) All() ([]wallet.Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wallets := make([]wallet.Wallet, 0, len(m.order))
	for _, id := range m.order {
		wallets = append(wallets, m.wallets[id])
	}

	return wallets, nil
}

// Update replaces an existing wallet.
func (m *Wallets) Update(w wallet.Wallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.wallets[w.ID]; !exists {
		return wallet.ErrNotFound
	}

	m.wallets[w.ID] = w

	return nil
}
