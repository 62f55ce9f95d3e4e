package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"badboys-inventory-api/internal/service"
	"badboys-inventory-api/pkg/apperror"
	"badboys-inventory-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// InventoryHandler handles inventory and item-ledger HTTP requests.
type InventoryHandler struct {
	inventoryService *service.InventoryService
	identityService  *service.IdentityService
	tradeUpService   *service.TradeUpService
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(
	inventoryService *service.InventoryService,
	identityService *service.IdentityService,
	tradeUpService *service.TradeUpService,
) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		identityService:  identityService,
		tradeUpService:   tradeUpService,
	}
}

// Connect handles POST /api/v1/users/{user_id}/connect
func (h *InventoryHandler) Connect(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		response.Error(w, apperror.Validation("user_id is required"))
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	user, err := h.inventoryService.EnsureUser(r.Context(), userID, req.Name)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"user_id": user.ID,
		"name":    user.Name,
		"coins":   user.Coins,
	})
}

// GetInventory handles GET /api/v1/inventory/{user_id}
func (h *InventoryHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		response.Error(w, apperror.Validation("user_id is required"))
		return
	}

	snap, err := h.inventoryService.GetInventory(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"user_id":   userID,
		"inventory": snap,
		"count":     snap.Count(),
	})
}

// GetBalance handles GET /api/v1/users/{user_id}/balance
func (h *InventoryHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		response.Error(w, apperror.Validation("user_id is required"))
		return
	}

	coins, err := h.inventoryService.Balance(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"user_id": userID,
		"coins":   coins,
	})
}

// GetTransactions handles GET /api/v1/users/{user_id}/transactions
func (h *InventoryHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		response.Error(w, apperror.Validation("user_id is required"))
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	txs, err := h.inventoryService.Transactions(r.Context(), userID, limit)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, txs)
}

// TradeUp handles POST /api/v1/inventory/{user_id}/tradeup
func (h *InventoryHandler) TradeUp(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		response.Error(w, apperror.Validation("user_id is required"))
		return
	}

	var req struct {
		Items []service.ItemRef `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apperror.Validation("invalid JSON"))
		return
	}

	reward, err := h.tradeUpService.TradeUp(r.Context(), userID, req.Items)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"reward": reward,
	})
}

// GetItemIdentity handles GET /api/v1/items/{item_uuid}
func (h *InventoryHandler) GetItemIdentity(w http.ResponseWriter, r *http.Request) {
	itemUUID := chi.URLParam(r, "item_uuid")
	if itemUUID == "" {
		response.Error(w, apperror.Validation("item_uuid is required"))
		return
	}

	identity, err := h.identityService.Get(r.Context(), itemUUID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, identity)
}

// GetItemHistory handles GET /api/v1/items/{item_uuid}/history
func (h *InventoryHandler) GetItemHistory(w http.ResponseWriter, r *http.Request) {
	itemUUID := chi.URLParam(r, "item_uuid")
	if itemUUID == "" {
		response.Error(w, apperror.Validation("item_uuid is required"))
		return
	}

	transfers, err := h.identityService.History(r.Context(), itemUUID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, transfers)
}
