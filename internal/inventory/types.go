package inventory

// ItemCategory represents the category of an inventory item
type ItemCategory string

const (
	CategoryRawMaterial ItemCategory = "RAW_MATERIAL"
	CategoryProduct     ItemCategory = "PRODUCT"
)

// Unit represents the unit of measurement for an inventory item
type Unit string

const (
	UnitKilogram Unit = "kg"
	UnitLiter    Unit = "L"
	UnitPiece    Unit = "units"
)

// Item represents a single stock line in the factory ledger.
// CostPerUnit is the purchase cost for raw materials and the
// selling price for finished products.
type Item struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Category    ItemCategory `json:"category"`
	Quantity    float64      `json:"quantity"`
	Unit        Unit         `json:"unit"`
	MinStock    float64      `json:"minStock"`
	CostPerUnit float64      `json:"costPerUnit"`
	Image       string       `json:"image,omitempty"`
}

// LowStock reports whether the item is at or below its reorder threshold.
func (i Item) LowStock() bool {
	return i.Quantity <= i.MinStock
}

// Ingredient is one line of a recipe's bill of materials. Quantity is
// the amount of the raw material consumed per unit of product.
type Ingredient struct {
	RawMaterialID string  `json:"rawMaterialId"`
	Quantity      float64 `json:"quantity"`
}

// Recipe maps a product to its bill of materials and process time.
// There is at most one recipe per product.
type Recipe struct {
	ProductID          string       `json:"productId"`
	ProcessTimeMinutes int          `json:"processTimeMinutes"`
	Ingredients        []Ingredient `json:"ingredients"`
}

// Batch represents one in-progress production run. A batch occupies a
// production slot from creation until it is finished, at which point it
// is removed rather than transitioned to another state.
type Batch struct {
	ID            string  `json:"id"`
	ProductID     string  `json:"productId"`
	Quantity      float64 `json:"quantity"`
	StartTime     int64   `json:"startTime"`
	EstimatedCost float64 `json:"estimatedCost"`
}

// TransactionType represents the kind of action recorded in the audit trail
type TransactionType string

const (
	TxRestock         TransactionType = "RESTOCK"
	TxProductionStart TransactionType = "PRODUCTION_START"
	TxProductionEnd   TransactionType = "PRODUCTION_FINISH"
	TxAdjustment      TransactionType = "ADJUSTMENT"
)

// Transaction is one append-only audit record. Entries are never
// mutated or deleted except by a bulk clear.
type Transaction struct {
	ID          string          `json:"id"`
	Timestamp   int64           `json:"timestamp"`
	Type        TransactionType `json:"type"`
	Details     string          `json:"details"`
	Amount      float64         `json:"amount,omitempty"`
	BatchID     string          `json:"batchId,omitempty"`
	Cost        float64         `json:"cost,omitempty"`
	PerformedBy string          `json:"performedBy"`
}

// UserRole represents the access level of a logged-in user
type UserRole string

const (
	RoleAdmin          UserRole = "ADMIN"
	RoleFactoryManager UserRole = "FACTORY_MANAGER"
)

// User represents a session-only operator identity; users are not persisted.
type User struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
	Avatar string   `json:"avatar,omitempty"`
}

// Result reports the outcome of a production command. Validation
// failures are carried here as a message, never as an error.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
