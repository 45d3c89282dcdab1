// Package api wires both applications onto gin routers: the AnuInv
// factory surface with JWT-gated mutations and a websocket activity
// feed, and the EthioExitPrep exam flow.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ethiosuite/internal/inventory"
	"ethiosuite/internal/monitoring"
)

// Analyzer produces the assistant briefing over current stock and
// recent activity.
type Analyzer interface {
	AnalyzeInventory(ctx context.Context, items []inventory.Item, transactions []inventory.Transaction) (string, error)
}

// InventoryAPI exposes the factory ledger over HTTP.
type InventoryAPI struct {
	Router *gin.Engine
	Ledger *inventory.Ledger
	Hub    *Hub
	Auth   AuthConfig

	// Analyzer is optional; without it the assistant endpoint reports
	// the service as unavailable.
	Analyzer Analyzer
}

// NewInventoryAPI builds the router for the factory app.
func NewInventoryAPI(ledger *inventory.Ledger, hub *Hub, analyzer Analyzer, auth AuthConfig) *InventoryAPI {
	a := &InventoryAPI{
		Router:   gin.Default(),
		Ledger:   ledger,
		Hub:      hub,
		Auth:     auth,
		Analyzer: analyzer,
	}
	a.registerRoutes()
	a.refreshGauges()
	return a
}

func (a *InventoryAPI) registerRoutes() {
	a.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	v1 := a.Router.Group("/api/v1")
	v1.POST("/auth/login", a.Login)

	if a.Hub != nil {
		v1.GET("/ws/activity", a.Hub.ServeWS)
	}

	authed := v1.Group("")
	authed.Use(a.authMiddleware())
	{
		authed.GET("/inventory", a.listItems)
		authed.GET("/inventory/low-stock", a.listLowStock)
		authed.POST("/inventory", a.addItem)
		authed.POST("/inventory/:id/restock", a.restock)

		authed.GET("/recipes", a.listRecipes)
		authed.GET("/batches", a.listBatches)
		authed.POST("/production/estimate", a.estimateCost)
		authed.POST("/production/start", a.startProduction)
		authed.POST("/production/:id/finish", a.finishBatch)

		authed.GET("/transactions", a.listTransactions)
		authed.POST("/assistant/analyze", a.analyze)
	}

	admin := authed.Group("")
	admin.Use(requireAdmin())
	{
		admin.PUT("/inventory/:id/cost", a.updateCost)
		admin.PUT("/inventory/:id", a.updateItem)
		admin.DELETE("/inventory/:id", a.deleteItem)
		admin.PUT("/recipes", a.upsertRecipe)
		admin.DELETE("/transactions", a.clearTransactions)
		admin.POST("/admin/reset", a.reset)
	}
}

// refreshGauges recomputes the stock gauges from the ledger. Called
// from handlers after mutations; never from the transaction hook, which
// runs under the ledger lock.
func (a *InventoryAPI) refreshGauges() {
	monitoring.ActiveBatches.Set(float64(len(a.Ledger.ActiveBatches())))
	monitoring.LowStockItems.Set(float64(len(a.Ledger.LowStockItems())))
}

func (a *InventoryAPI) listItems(c *gin.Context) {
	c.JSON(http.StatusOK, a.Ledger.Items())
}

func (a *InventoryAPI) listLowStock(c *gin.Context) {
	items := a.Ledger.LowStockItems()
	if items == nil {
		items = []inventory.Item{}
	}
	c.JSON(http.StatusOK, items)
}

func (a *InventoryAPI) addItem(c *gin.Context) {
	var item inventory.Item
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := a.Ledger.AddItem(currentUser(c).Name, item)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a.refreshGauges()
	c.JSON(http.StatusCreated, created)
}

func (a *InventoryAPI) restock(c *gin.Context) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := a.Ledger.Restock(currentUser(c).Name, c.Param("id"), req.Amount); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, inventory.ErrItemNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	a.refreshGauges()
	c.JSON(http.StatusOK, gin.H{"status": "restocked"})
}

func (a *InventoryAPI) updateCost(c *gin.Context) {
	var req struct {
		CostPerUnit float64 `json:"costPerUnit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := a.Ledger.UpdateCost(currentUser(c).Name, c.Param("id"), req.CostPerUnit); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, inventory.ErrItemNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (a *InventoryAPI) updateItem(c *gin.Context) {
	var item inventory.Item
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item.ID = c.Param("id")

	if err := a.Ledger.UpdateItem(currentUser(c).Name, item); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, inventory.ErrItemNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	a.refreshGauges()
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (a *InventoryAPI) deleteItem(c *gin.Context) {
	if err := a.Ledger.DeleteItem(currentUser(c).Name, c.Param("id")); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, inventory.ErrItemNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	a.refreshGauges()
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (a *InventoryAPI) listRecipes(c *gin.Context) {
	c.JSON(http.StatusOK, a.Ledger.Recipes())
}

func (a *InventoryAPI) upsertRecipe(c *gin.Context) {
	var recipe inventory.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := a.Ledger.UpsertRecipe(currentUser(c).Name, recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (a *InventoryAPI) listBatches(c *gin.Context) {
	batches := a.Ledger.ActiveBatches()
	if batches == nil {
		batches = []inventory.Batch{}
	}
	c.JSON(http.StatusOK, batches)
}

func (a *InventoryAPI) estimateCost(c *gin.Context) {
	var req struct {
		ProductID string  `json:"productId"`
		Quantity  float64 `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, ok := a.Ledger.RecipeFor(req.ProductID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no recipe for product " + req.ProductID})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"productId":     req.ProductID,
		"quantity":      req.Quantity,
		"estimatedCost": a.Ledger.EstimateBatchCost(recipe, req.Quantity),
	})
}

func (a *InventoryAPI) startProduction(c *gin.Context) {
	var req struct {
		ProductID string  `json:"productId"`
		Quantity  float64 `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be positive"})
		return
	}

	recipe, _ := a.Ledger.RecipeFor(req.ProductID)

	// Price against the live ledger immediately before starting so the
	// frozen batch estimate reflects current costs.
	cost := a.Ledger.EstimateBatchCost(recipe, req.Quantity)
	result := a.Ledger.StartProduction(currentUser(c).Name, recipe, req.Quantity, cost)
	if !result.Success {
		c.JSON(http.StatusConflict, result)
		return
	}
	a.refreshGauges()
	c.JSON(http.StatusOK, result)
}

func (a *InventoryAPI) finishBatch(c *gin.Context) {
	if err := a.Ledger.FinishBatch(currentUser(c).Name, c.Param("id")); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, inventory.ErrBatchNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	a.refreshGauges()
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}

func (a *InventoryAPI) listTransactions(c *gin.Context) {
	txs := a.Ledger.Transactions()
	if txs == nil {
		txs = []inventory.Transaction{}
	}
	c.JSON(http.StatusOK, txs)
}

func (a *InventoryAPI) clearTransactions(c *gin.Context) {
	a.Ledger.ClearTransactions()
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func (a *InventoryAPI) reset(c *gin.Context) {
	a.Ledger.Reset(currentUser(c).Name)
	a.refreshGauges()
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

func (a *InventoryAPI) analyze(c *gin.Context) {
	if a.Analyzer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "assistant not configured"})
		return
	}

	analysis, err := a.Analyzer.AnalyzeInventory(c.Request.Context(), a.Ledger.Items(), a.Ledger.Transactions())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": analysis})
}
