package inventory

import (
	"fmt"

	"github.com/google/uuid"
)

// ActiveBatches returns a copy of the in-progress production runs.
func (l *Ledger) ActiveBatches() []Batch {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Batch, len(l.batches))
	copy(out, l.batches)
	return out
}

// EstimateBatchCost prices a production run against the current ledger:
// the sum over ingredients of perUnit * quantity * costPerUnit. Costs
// are looked up live, so callers should recompute immediately before
// StartProduction to keep the frozen batch estimate consistent.
func (l *Ledger) EstimateBatchCost(recipe Recipe, quantity float64) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var total float64
	for _, ing := range recipe.Ingredients {
		if item := l.findItem(ing.RawMaterialID); item != nil {
			total += ing.Quantity * quantity * item.CostPerUnit
		}
	}
	return total
}

// StartProduction validates and starts a production run. Validation
// failures come back as an unsuccessful Result with a human-readable
// message; the ledger is only touched once every ingredient has passed
// the stock check, so a failure never leaves a partial debit.
func (l *Ledger) StartProduction(actor string, recipe Recipe, quantity, estimatedCost float64) Result {
	if len(recipe.Ingredients) == 0 {
		return Result{Success: false, Message: "Invalid recipe data."}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.batches) >= MaxProductionSlots {
		return Result{Success: false, Message: "No production slots available!"}
	}

	for _, ing := range recipe.Ingredients {
		item := l.findItem(ing.RawMaterialID)
		if item == nil {
			return Result{Success: false, Message: "Not enough material!"}
		}
		if item.Quantity < ing.Quantity*quantity {
			return Result{Success: false, Message: fmt.Sprintf("Not enough %s!", item.Name)}
		}
	}

	for _, ing := range recipe.Ingredients {
		l.findItem(ing.RawMaterialID).Quantity -= ing.Quantity * quantity
	}

	batch := Batch{
		ID:            "BATCH-" + uuid.NewString(),
		ProductID:     recipe.ProductID,
		Quantity:      quantity,
		StartTime:     l.now().UnixMilli(),
		EstimatedCost: estimatedCost,
	}
	l.batches = append(l.batches, batch)

	productName := recipe.ProductID
	if product := l.findItem(recipe.ProductID); product != nil {
		productName = product.Name
	}
	l.appendTx(actor, Transaction{
		Type:    TxProductionStart,
		Details: fmt.Sprintf("Started batch of %v %s", quantity, productName),
		Amount:  quantity,
		BatchID: batch.ID,
	})

	return Result{Success: true, Message: "Production started successfully!"}
}

// FinishBatch credits the product's stock with the batch quantity,
// frees the production slot and records a PRODUCTION_FINISH transaction
// carrying the cost frozen at start time.
func (l *Ledger) FinishBatch(actor, batchID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i := range l.batches {
		if l.batches[i].ID == batchID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrBatchNotFound, batchID)
	}
	batch := l.batches[idx]

	productName := batch.ProductID
	if product := l.findItem(batch.ProductID); product != nil {
		product.Quantity += batch.Quantity
		productName = product.Name
	}

	l.batches = append(l.batches[:idx], l.batches[idx+1:]...)

	l.appendTx(actor, Transaction{
		Type:    TxProductionEnd,
		Details: fmt.Sprintf("Completed batch %s: %v units of %s", batch.ID, batch.Quantity, productName),
		Amount:  batch.Quantity,
		BatchID: batch.ID,
		Cost:    batch.EstimatedCost,
	})
	return nil
}
