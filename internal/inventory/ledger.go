package inventory

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrItemNotFound is returned when a command references an unknown item id.
	ErrItemNotFound = errors.New("inventory item not found")
	// ErrBatchNotFound is returned when a command references an unknown batch id.
	ErrBatchNotFound = errors.New("batch not found")
)

// Ledger owns all AnuInv state: stock items, recipes, active batches and
// the transaction log. Every mutation goes through a command method that
// validates first and applies atomically under the lock. State is
// volatile; there is no persistence boundary for this app.
type Ledger struct {
	mu           sync.RWMutex
	items        []Item
	recipes      []Recipe
	batches      []Batch
	transactions []Transaction

	// onTx, when set, is invoked for every appended transaction.
	// The hook runs under the ledger lock and must not call back in.
	onTx func(Transaction)

	now   func() time.Time
	newID func() string
}

// NewLedger creates a ledger populated with the factory seed data.
func NewLedger() *Ledger {
	return &Ledger{
		items:   SeedItems(),
		recipes: SeedRecipes(),
		now:     time.Now,
		newID:   newTransactionID,
	}
}

// SetTransactionHook registers a callback fired for every appended
// transaction (used for the live activity feed).
func (l *Ledger) SetTransactionHook(fn func(Transaction)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onTx = fn
}

// Items returns a copy of the current stock list.
func (l *Ledger) Items() []Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Item, len(l.items))
	copy(out, l.items)
	return out
}

// Item looks up a single stock item by id.
func (l *Ledger) Item(id string) (Item, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if it := l.findItem(id); it != nil {
		return *it, true
	}
	return Item{}, false
}

// LowStockItems returns every item at or below its reorder threshold.
// Low-stock status is derived on read, never stored.
func (l *Ledger) LowStockItems() []Item {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Item
	for _, it := range l.items {
		if it.LowStock() {
			out = append(out, it)
		}
	}
	return out
}

// Restock increases an item's quantity by amount and records a RESTOCK
// transaction. The amount must be positive and the item must exist.
func (l *Ledger) Restock(actor, itemID string, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("restock amount must be positive, got %v", amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	item := l.findItem(itemID)
	if item == nil {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}

	item.Quantity += amount
	l.appendTx(actor, Transaction{
		Type:    TxRestock,
		Details: fmt.Sprintf("Restocked %v %s of %s", amount, item.Unit, item.Name),
		Amount:  amount,
	})
	return nil
}

// AddItem appends a new stock item. The id is generated from the
// category prefix and the current time, matching the existing seed ids.
func (l *Ledger) AddItem(actor string, item Item) (Item, error) {
	if item.Name == "" || item.Category == "" || item.Unit == "" {
		return Item{}, errors.New("item name, category and unit are required")
	}
	if item.Category != CategoryRawMaterial && item.Category != CategoryProduct {
		return Item{}, fmt.Errorf("unknown item category %q", item.Category)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	prefix := "p"
	if item.Category == CategoryRawMaterial {
		prefix = "rm"
	}
	item.ID = fmt.Sprintf("%s_%d", prefix, l.now().UnixMilli())

	l.items = append(l.items, item)
	l.appendTx(actor, Transaction{
		Type:    TxAdjustment,
		Details: fmt.Sprintf("Created new item: %s (%s)", item.Name, item.Category),
		Amount:  item.Quantity,
	})
	return item, nil
}

// UpdateCost overwrites an item's cost-per-unit and records an adjustment.
func (l *Ledger) UpdateCost(actor, itemID string, newCost float64) error {
	if newCost < 0 {
		return fmt.Errorf("cost must not be negative, got %v", newCost)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	item := l.findItem(itemID)
	if item == nil {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}

	item.CostPerUnit = newCost
	l.appendTx(actor, Transaction{
		Type:    TxAdjustment,
		Details: fmt.Sprintf("Updated cost for item %s to ETB %v", itemID, newCost),
	})
	return nil
}

// UpdateItem replaces every field of the item matching the given id.
func (l *Ledger) UpdateItem(actor string, item Item) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing := l.findItem(item.ID)
	if existing == nil {
		return fmt.Errorf("%w: %s", ErrItemNotFound, item.ID)
	}

	*existing = item
	l.appendTx(actor, Transaction{
		Type:    TxAdjustment,
		Details: fmt.Sprintf("Updated details for %s", item.Name),
	})
	return nil
}

// DeleteItem removes an item and any recipe keyed to it. Recipes that
// merely reference the item as an ingredient are left untouched.
func (l *Ledger) DeleteItem(actor, itemID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i := range l.items {
		if l.items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}

	l.items = append(l.items[:idx], l.items[idx+1:]...)

	kept := l.recipes[:0]
	for _, r := range l.recipes {
		if r.ProductID != itemID {
			kept = append(kept, r)
		}
	}
	l.recipes = kept

	l.appendTx(actor, Transaction{
		Type:    TxAdjustment,
		Details: fmt.Sprintf("Deleted product %s", itemID),
	})
	return nil
}

// Reset restores items, recipes, batches and the transaction log to the
// factory seed, then records a single adjustment noting the reset.
func (l *Ledger) Reset(actor string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = SeedItems()
	l.recipes = SeedRecipes()
	l.batches = nil
	l.transactions = nil
	l.appendTx(actor, Transaction{
		Type:    TxAdjustment,
		Details: "System reset to factory defaults.",
	})
}

// findItem returns a pointer into the items slice; callers must hold the lock.
func (l *Ledger) findItem(id string) *Item {
	for i := range l.items {
		if l.items[i].ID == id {
			return &l.items[i]
		}
	}
	return nil
}
