package handler

import (
	"encoding/json"
	"net/http"

	"badboys-inventory-api/internal/service"
	"badboys-inventory-api/pkg/apperror"
	"badboys-inventory-api/pkg/response"

	"github.com/go-chi/chi/v5"
)

// ShopHandler handles storefront and container-unlock HTTP requests.
type ShopHandler struct {
	shopService *service.ShopService
}

// NewShopHandler creates a new shop handler.
func NewShopHandler(shopService *service.ShopService) *ShopHandler {
	return &ShopHandler{shopService: shopService}
}

// ListItems handles GET /api/v1/shop/items
func (h *ShopHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.shopService.ListShopItems(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, items)
}

// Purchase handles POST /api/v1/shop/purchase
func (h *ShopHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID     string `json:"userId"`
		ShopItemID int64  `json:"shopItemId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apperror.Validation("invalid JSON"))
		return
	}
	if req.UserID == "" || req.ShopItemID == 0 {
		response.Error(w, apperror.Validation("userId and shopItemId are required"))
		return
	}

	item, err := h.shopService.PurchaseShopItem(r.Context(), req.UserID, req.ShopItemID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]interface{}{
		"item": item,
	})
}

// Unlock handles POST /api/v1/inventory/{user_id}/unlock
func (h *ShopHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	if userID == "" {
		response.Error(w, apperror.Validation("user_id is required"))
		return
	}

	var req struct {
		ContainerKey string `json:"containerKey"`
		KeyKey       string `json:"keyKey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apperror.Validation("invalid JSON"))
		return
	}
	if req.ContainerKey == "" {
		response.Error(w, apperror.Validation("containerKey is required"))
		return
	}

	result, err := h.shopService.UnlockContainer(r.Context(), userID, req.ContainerKey, req.KeyKey)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, result)
}
