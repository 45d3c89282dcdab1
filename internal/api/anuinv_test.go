package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ethiosuite/internal/inventory"
)

func newTestInventoryAPI(t *testing.T) *InventoryAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewInventoryAPI(inventory.NewLedger(), nil, nil, AuthConfig{
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	})
}

// loginAs exchanges an email for a bearer token through the real
// login endpoint.
func loginAs(t *testing.T, a *InventoryAPI, email string) string {
	t.Helper()
	rec := doJSON(t, a.Router, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string         `json:"token"`
		User  inventory.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLoginKnownAndUnknownUsers(t *testing.T) {
	a := newTestInventoryAPI(t)

	rec := doJSON(t, a.Router, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "admin@anuinv.com"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		User inventory.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Admin User", resp.User.Name)
	assert.Equal(t, inventory.RoleAdmin, resp.User.Role)

	rec = doJSON(t, a.Router, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "guest@example.com"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, inventory.RoleFactoryManager, resp.User.Role, "unknown emails get a manager session")
}

func TestInventoryRequiresAuth(t *testing.T) {
	a := newTestInventoryAPI(t)

	rec := doJSON(t, a.Router, http.MethodGet, "/api/v1/inventory", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, a.Router, http.MethodGet, "/api/v1/inventory", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminEndpointsAreRoleGated(t *testing.T) {
	a := newTestInventoryAPI(t)
	manager := loginAs(t, a, "user@anuinv.com")
	admin := loginAs(t, a, "admin@anuinv.com")

	body := map[string]float64{"costPerUnit": 2.5}
	rec := doJSON(t, a.Router, http.MethodPut, "/api/v1/inventory/rm_sugar/cost", body, manager)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, a.Router, http.MethodPut, "/api/v1/inventory/rm_sugar/cost", body, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	item, ok := a.Ledger.Item("rm_sugar")
	require.True(t, ok)
	assert.Equal(t, 2.5, item.CostPerUnit)
}

func TestRestockEndpoint(t *testing.T) {
	a := newTestInventoryAPI(t)
	token := loginAs(t, a, "user@anuinv.com")

	rec := doJSON(t, a.Router, http.MethodPost, "/api/v1/inventory/rm_sugar/restock", map[string]float64{"amount": 50}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	item, ok := a.Ledger.Item("rm_sugar")
	require.True(t, ok)
	assert.Equal(t, 550.0, item.Quantity)

	txs := a.Ledger.Transactions()
	require.NotEmpty(t, txs)
	assert.Equal(t, "Factory Supervisor", txs[0].PerformedBy, "actor comes from the token")

	rec = doJSON(t, a.Router, http.MethodPost, "/api/v1/inventory/nope/restock", map[string]float64{"amount": 50}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, a.Router, http.MethodPost, "/api/v1/inventory/rm_sugar/restock", map[string]float64{"amount": -5}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductionFlowOverHTTP(t *testing.T) {
	a := newTestInventoryAPI(t)
	token := loginAs(t, a, "user@anuinv.com")

	rec := doJSON(t, a.Router, http.MethodPost, "/api/v1/production/estimate",
		map[string]interface{}{"productId": "p_productA", "quantity": 10.0}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var estimate struct {
		EstimatedCost float64 `json:"estimatedCost"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &estimate))
	assert.Greater(t, estimate.EstimatedCost, 0.0)

	rec = doJSON(t, a.Router, http.MethodPost, "/api/v1/production/start",
		map[string]interface{}{"productId": "p_productA", "quantity": 10.0}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	batches := a.Ledger.ActiveBatches()
	require.Len(t, batches, 1)
	assert.Equal(t, estimate.EstimatedCost, batches[0].EstimatedCost, "frozen cost matches the live estimate")

	rec = doJSON(t, a.Router, http.MethodPost, "/api/v1/production/"+batches[0].ID+"/finish", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, a.Ledger.ActiveBatches())

	product, ok := a.Ledger.Item("p_productA")
	require.True(t, ok)
	assert.Equal(t, 60.0, product.Quantity)
}

func TestStartProductionWithoutRecipeIsRejected(t *testing.T) {
	a := newTestInventoryAPI(t)
	token := loginAs(t, a, "user@anuinv.com")

	rec := doJSON(t, a.Router, http.MethodPost, "/api/v1/production/start",
		map[string]interface{}{"productId": "no_such_product", "quantity": 5.0}, token)
	require.Equal(t, http.StatusConflict, rec.Code)

	var result inventory.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Equal(t, "Invalid recipe data.", result.Message)
	assert.Empty(t, a.Ledger.ActiveBatches())
}

func TestAdminResetAndClearTransactions(t *testing.T) {
	a := newTestInventoryAPI(t)
	admin := loginAs(t, a, "admin@anuinv.com")

	require.NoError(t, a.Ledger.Restock("", "rm_sugar", 100))

	rec := doJSON(t, a.Router, http.MethodDelete, "/api/v1/transactions", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, a.Ledger.Transactions())

	rec = doJSON(t, a.Router, http.MethodPost, "/api/v1/admin/reset", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	item, ok := a.Ledger.Item("rm_sugar")
	require.True(t, ok)
	assert.Equal(t, 500.0, item.Quantity)

	txs := a.Ledger.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, "System reset to factory defaults.", txs[0].Details)
}

func TestAssistantUnavailableWithoutAnalyzer(t *testing.T) {
	a := newTestInventoryAPI(t)
	token := loginAs(t, a, "user@anuinv.com")

	rec := doJSON(t, a.Router, http.MethodPost, "/api/v1/assistant/analyze", nil, token)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
