package inventory

import (
	"github.com/google/uuid"
)

func newTransactionID() string {
	return uuid.NewString()
}

// Transactions returns a copy of the audit trail, newest first.
func (l *Ledger) Transactions() []Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Transaction, len(l.transactions))
	copy(out, l.transactions)
	return out
}

// ClearTransactions empties the audit trail unconditionally.
func (l *Ledger) ClearTransactions() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transactions = nil
}

// appendTx stamps and prepends a transaction; callers must hold the lock.
// An empty actor is recorded as "System".
func (l *Ledger) appendTx(actor string, tx Transaction) {
	if actor == "" {
		actor = "System"
	}
	tx.ID = l.newID()
	tx.Timestamp = l.now().UnixMilli()
	tx.PerformedBy = actor

	l.transactions = append([]Transaction{tx}, l.transactions...)
	if l.onTx != nil {
		l.onTx(tx)
	}
}
