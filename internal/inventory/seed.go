package inventory

// MaxProductionSlots is the fixed number of concurrent production runs.
const MaxProductionSlots = 3

// SeedItems returns the factory-default stock. Reset restores the
// ledger to exactly this state.
func SeedItems() []Item {
	return []Item{
		// Raw materials
		{ID: "rm_sugar", Name: "Sugar", Category: CategoryRawMaterial, Quantity: 500, Unit: UnitKilogram, MinStock: 100, CostPerUnit: 1.2},
		{ID: "rm_glucose", Name: "Glucose", Category: CategoryRawMaterial, Quantity: 300, Unit: UnitLiter, MinStock: 50, CostPerUnit: 2.5},
		{ID: "rm_stick", Name: "Candy Sticks", Category: CategoryRawMaterial, Quantity: 5000, Unit: UnitPiece, MinStock: 1000, CostPerUnit: 0.05},
		{ID: "rm_karton", Name: "Karton Box", Category: CategoryRawMaterial, Quantity: 200, Unit: UnitPiece, MinStock: 50, CostPerUnit: 0.5},
		{ID: "rm_pbag", Name: "Plastic Bag", Category: CategoryRawMaterial, Quantity: 1000, Unit: UnitPiece, MinStock: 200, CostPerUnit: 0.1},
		{ID: "rm_pbottle", Name: "Plastic Bottle", Category: CategoryRawMaterial, Quantity: 500, Unit: UnitPiece, MinStock: 100, CostPerUnit: 0.3},
		{ID: "rm_cont", Name: "Container", Category: CategoryRawMaterial, Quantity: 100, Unit: UnitPiece, MinStock: 20, CostPerUnit: 5.0},

		// Products
		{ID: "p_productA", Name: "Hilwit", Category: CategoryProduct, Quantity: 50, Unit: UnitPiece, MinStock: 20, CostPerUnit: 15},
		{ID: "p_productB", Name: "Daru", Category: CategoryProduct, Quantity: 100, Unit: UnitPiece, MinStock: 50, CostPerUnit: 10},
		{ID: "p_productC", Name: "(Product C)", Category: CategoryProduct, Quantity: 20, Unit: UnitPiece, MinStock: 10, CostPerUnit: 12},
		{ID: "p_productD", Name: "(Product D)", Category: CategoryProduct, Quantity: 0, Unit: UnitPiece, MinStock: 15, CostPerUnit: 8},
		{ID: "p_productE", Name: "(Product E)", Category: CategoryProduct, Quantity: 5, Unit: UnitPiece, MinStock: 10, CostPerUnit: 20},
	}
}

// SeedRecipes returns the factory-default bill of materials for each product.
func SeedRecipes() []Recipe {
	return []Recipe{
		{
			ProductID:          "p_productA",
			ProcessTimeMinutes: 45,
			Ingredients: []Ingredient{
				{RawMaterialID: "rm_sugar", Quantity: 0.5},
				{RawMaterialID: "rm_glucose", Quantity: 0.2},
				{RawMaterialID: "rm_pbag", Quantity: 1},
			},
		},
		{
			ProductID:          "p_productB",
			ProcessTimeMinutes: 30,
			Ingredients: []Ingredient{
				{RawMaterialID: "rm_sugar", Quantity: 0.3},
				{RawMaterialID: "rm_glucose", Quantity: 0.1},
				{RawMaterialID: "rm_stick", Quantity: 10},
				{RawMaterialID: "rm_pbag", Quantity: 1},
			},
		},
		{
			ProductID:          "p_productC",
			ProcessTimeMinutes: 60,
			Ingredients: []Ingredient{
				{RawMaterialID: "rm_sugar", Quantity: 0.2},
				{RawMaterialID: "rm_pbottle", Quantity: 1},
			},
		},
		{
			ProductID:          "p_productD",
			ProcessTimeMinutes: 90,
			Ingredients: []Ingredient{
				{RawMaterialID: "rm_sugar", Quantity: 1.0},
				{RawMaterialID: "rm_karton", Quantity: 1},
			},
		},
		{
			ProductID:          "p_productE",
			ProcessTimeMinutes: 120,
			Ingredients: []Ingredient{
				{RawMaterialID: "rm_sugar", Quantity: 0.8},
				{RawMaterialID: "rm_glucose", Quantity: 0.5},
				{RawMaterialID: "rm_cont", Quantity: 1},
			},
		},
	}
}
