package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestock(t *testing.T) {
	l := NewLedger()

	before, ok := l.Item("rm_sugar")
	require.True(t, ok)

	err := l.Restock("Abebe", "rm_sugar", 25)
	require.NoError(t, err)

	after, _ := l.Item("rm_sugar")
	assert.Equal(t, before.Quantity+25, after.Quantity)

	txs := l.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, TxRestock, txs[0].Type)
	assert.Equal(t, 25.0, txs[0].Amount)
	assert.Equal(t, "Abebe", txs[0].PerformedBy)
}

func TestRestockRejectsBadInput(t *testing.T) {
	l := NewLedger()

	assert.Error(t, l.Restock("", "rm_sugar", 0))
	assert.Error(t, l.Restock("", "rm_sugar", -5))
	assert.ErrorIs(t, l.Restock("", "no_such_item", 10), ErrItemNotFound)

	// Rejected commands must not leave a trace in the audit trail.
	assert.Empty(t, l.Transactions())
}

func TestAddItemGeneratesCategoryPrefixedID(t *testing.T) {
	l := NewLedger()

	raw, err := l.AddItem("", Item{Name: "Citric Acid", Category: CategoryRawMaterial, Unit: UnitKilogram, Quantity: 10})
	require.NoError(t, err)
	assert.Regexp(t, `^rm_\d+$`, raw.ID)

	product, err := l.AddItem("", Item{Name: "Mints", Category: CategoryProduct, Unit: UnitPiece})
	require.NoError(t, err)
	assert.Regexp(t, `^p_\d+$`, product.ID)

	_, err = l.AddItem("", Item{Category: CategoryProduct, Unit: UnitPiece})
	assert.Error(t, err, "missing name must be rejected")

	txs := l.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, TxAdjustment, txs[0].Type)
	assert.Equal(t, "System", txs[0].PerformedBy)
}

func TestUpdateCost(t *testing.T) {
	l := NewLedger()

	require.NoError(t, l.UpdateCost("admin", "rm_sugar", 1.5))
	item, _ := l.Item("rm_sugar")
	assert.Equal(t, 1.5, item.CostPerUnit)

	assert.Error(t, l.UpdateCost("admin", "rm_sugar", -1))
	assert.ErrorIs(t, l.UpdateCost("admin", "missing", 1), ErrItemNotFound)
}

func TestUpdateItemReplacesAllFields(t *testing.T) {
	l := NewLedger()

	err := l.UpdateItem("admin", Item{
		ID: "p_productA", Name: "Hilwit Deluxe", Category: CategoryProduct,
		Quantity: 75, Unit: UnitPiece, MinStock: 30, CostPerUnit: 18,
	})
	require.NoError(t, err)

	item, _ := l.Item("p_productA")
	assert.Equal(t, "Hilwit Deluxe", item.Name)
	assert.Equal(t, 75.0, item.Quantity)
	assert.Equal(t, 30.0, item.MinStock)
}

func TestDeleteItemCascadesOwnRecipeOnly(t *testing.T) {
	l := NewLedger()

	require.NoError(t, l.DeleteItem("admin", "p_productA"))

	_, ok := l.Item("p_productA")
	assert.False(t, ok)
	_, ok = l.RecipeFor("p_productA")
	assert.False(t, ok, "recipe keyed to the deleted product must go with it")

	// Recipes of unrelated products stay intact.
	_, ok = l.RecipeFor("p_productB")
	assert.True(t, ok)

	assert.ErrorIs(t, l.DeleteItem("admin", "p_productA"), ErrItemNotFound)
}

func TestReset(t *testing.T) {
	l := NewLedger()

	require.NoError(t, l.Restock("", "rm_sugar", 100))
	require.NoError(t, l.DeleteItem("", "p_productB"))
	l.Reset("admin")

	item, _ := l.Item("rm_sugar")
	assert.Equal(t, 500.0, item.Quantity)
	_, ok := l.Item("p_productB")
	assert.True(t, ok)

	txs := l.Transactions()
	require.Len(t, txs, 1, "reset leaves exactly one adjustment entry")
	assert.Equal(t, "System reset to factory defaults.", txs[0].Details)
}

func TestLowStockDerivedOnRead(t *testing.T) {
	l := NewLedger()

	low := l.LowStockItems()
	ids := make([]string, 0, len(low))
	for _, it := range low {
		ids = append(ids, it.ID)
	}
	// Seed data ships two products at or below their threshold.
	assert.ElementsMatch(t, []string{"p_productD", "p_productE"}, ids)
}

func TestUpsertRecipeValidatesReferences(t *testing.T) {
	l := NewLedger()

	// Replace an existing recipe.
	err := l.UpsertRecipe("admin", Recipe{
		ProductID:          "p_productA",
		ProcessTimeMinutes: 50,
		Ingredients:        []Ingredient{{RawMaterialID: "rm_sugar", Quantity: 0.6}},
	})
	require.NoError(t, err)
	r, _ := l.RecipeFor("p_productA")
	assert.Equal(t, 50, r.ProcessTimeMinutes)
	require.Len(t, r.Ingredients, 1)

	// Dangling ingredient reference is rejected at write time.
	err = l.UpsertRecipe("admin", Recipe{
		ProductID:   "p_productB",
		Ingredients: []Ingredient{{RawMaterialID: "rm_ghost", Quantity: 1}},
	})
	assert.ErrorContains(t, err, "rm_ghost")

	// A product id cannot be used as an ingredient.
	err = l.UpsertRecipe("admin", Recipe{
		ProductID:   "p_productB",
		Ingredients: []Ingredient{{RawMaterialID: "p_productA", Quantity: 1}},
	})
	assert.Error(t, err)

	// Unknown product id is rejected too.
	err = l.UpsertRecipe("admin", Recipe{ProductID: "p_ghost"})
	assert.Error(t, err)
}

func TestTransactionOrderNewestFirst(t *testing.T) {
	l := NewLedger()

	require.NoError(t, l.Restock("", "rm_sugar", 1))
	require.NoError(t, l.Restock("", "rm_glucose", 2))

	txs := l.Transactions()
	require.Len(t, txs, 2)
	assert.Contains(t, txs[0].Details, "Glucose")
	assert.Contains(t, txs[1].Details, "Sugar")

	l.ClearTransactions()
	assert.Empty(t, l.Transactions())
}

func TestTransactionHook(t *testing.T) {
	l := NewLedger()

	var seen []Transaction
	l.SetTransactionHook(func(tx Transaction) { seen = append(seen, tx) })

	require.NoError(t, l.Restock("Abebe", "rm_sugar", 5))
	require.Len(t, seen, 1)
	assert.Equal(t, TxRestock, seen[0].Type)
}
