package inventory

import (
	"errors"
	"fmt"
)

// Recipes returns a copy of the recipe book.
func (l *Ledger) Recipes() []Recipe {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Recipe, len(l.recipes))
	copy(out, l.recipes)
	return out
}

// RecipeFor returns the recipe keyed to the given product id.
func (l *Ledger) RecipeFor(productID string) (Recipe, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, r := range l.recipes {
		if r.ProductID == productID {
			return r, true
		}
	}
	return Recipe{}, false
}

// UpsertRecipe replaces the recipe for recipe.ProductID if one exists,
// else appends it. The product and every referenced ingredient must
// resolve to existing ledger items; dangling references are rejected at
// write time rather than discovered during production.
func (l *Ledger) UpsertRecipe(actor string, recipe Recipe) error {
	if recipe.ProductID == "" {
		return errors.New("recipe product id is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	product := l.findItem(recipe.ProductID)
	if product == nil || product.Category != CategoryProduct {
		return fmt.Errorf("recipe product %s does not resolve to a product item", recipe.ProductID)
	}
	for _, ing := range recipe.Ingredients {
		item := l.findItem(ing.RawMaterialID)
		if item == nil || item.Category != CategoryRawMaterial {
			return fmt.Errorf("recipe ingredient %s does not resolve to a raw material", ing.RawMaterialID)
		}
	}

	replaced := false
	for i := range l.recipes {
		if l.recipes[i].ProductID == recipe.ProductID {
			l.recipes[i] = recipe
			replaced = true
			break
		}
	}
	if !replaced {
		l.recipes = append(l.recipes, recipe)
	}

	l.appendTx(actor, Transaction{
		Type:    TxAdjustment,
		Details: fmt.Sprintf("Updated recipe configuration for product %s", recipe.ProductID),
	})
	return nil
}
