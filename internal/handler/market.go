package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"badboys-inventory-api/internal/service"
	"badboys-inventory-api/pkg/apperror"
	"badboys-inventory-api/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// MarketHandler handles marketplace HTTP requests.
type MarketHandler struct {
	marketplace *service.MarketplaceService
	listingTTL  time.Duration
}

// NewMarketHandler creates a new marketplace handler. listingTTL is the
// lifetime of new listings.
func NewMarketHandler(marketplace *service.MarketplaceService, listingTTL time.Duration) *MarketHandler {
	return &MarketHandler{
		marketplace: marketplace,
		listingTTL:  listingTTL,
	}
}

// BrowseListings handles GET /api/v1/market/listings
func (h *MarketHandler) BrowseListings(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	listings, err := h.marketplace.BrowseListings(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, listings)
}

// GetListing handles GET /api/v1/market/listings/{listing_id}
func (h *MarketHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	listingID, err := parseListingID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	listing, err := h.marketplace.GetListing(r.Context(), listingID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, listing)
}

// CreateListing handles POST /api/v1/market/listings
func (h *MarketHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID  string `json:"userId"`
		ItemKey string `json:"itemKey"`
		Price   string `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apperror.Validation("invalid JSON"))
		return
	}
	if req.UserID == "" || req.ItemKey == "" {
		response.Error(w, apperror.Validation("userId and itemKey are required"))
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		response.Error(w, apperror.Validation("price must be a decimal number"))
		return
	}

	listing, err := h.marketplace.CreateListing(r.Context(), req.UserID, req.ItemKey, price, h.listingTTL)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, listing)
}

// CancelListing handles POST /api/v1/market/listings/{listing_id}/cancel
func (h *MarketHandler) CancelListing(w http.ResponseWriter, r *http.Request) {
	listingID, err := parseListingID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		response.Error(w, apperror.Validation("userId is required"))
		return
	}

	listing, err := h.marketplace.CancelListing(r.Context(), listingID, req.UserID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, listing)
}

// PurchaseListing handles POST /api/v1/market/listings/{listing_id}/purchase
func (h *MarketHandler) PurchaseListing(w http.ResponseWriter, r *http.Request) {
	listingID, err := parseListingID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		response.Error(w, apperror.Validation("userId is required"))
		return
	}

	listing, err := h.marketplace.PurchaseListing(r.Context(), listingID, req.UserID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, listing)
}

// PriceHistory handles GET /api/v1/market/items/{item_id}/prices
func (h *MarketHandler) PriceHistory(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.Atoi(chi.URLParam(r, "item_id"))
	if err != nil {
		response.Error(w, apperror.Validation("item_id must be a number"))
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	points, err := h.marketplace.PriceHistory(r.Context(), itemID, limit)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, points)
}

func parseListingID(r *http.Request) (int64, error) {
	listingID, err := strconv.ParseInt(chi.URLParam(r, "listing_id"), 10, 64)
	if err != nil {
		return 0, apperror.Validation("listing_id must be a number")
	}
	return listingID, nil
}
