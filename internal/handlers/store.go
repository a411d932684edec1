package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"quizclash-backend/internal/database"
	"quizclash-backend/internal/models"
)

// StoreItem is one catalog entry. Effect items cost tokens; token packages
// cost real money through the payment gateway.
type StoreItem struct {
	ID          int               `json:"id"`
	Name        string            `json:"name"`
	Price       int               `json:"price"`
	Description string            `json:"description"`
	Effect      models.EffectKind `json:"effect_type"`
	Tokens      int               `json:"tokens,omitempty"`
}

// storeCatalog is fixed; ids below 1000 are effect items priced in tokens,
// ids 1001+ are token top-up packages priced in VND.
var storeCatalog = []StoreItem{
	{ID: 1, Name: "Skip Turn", Price: 50, Description: "Skip the current opponent's turn", Effect: models.EffectSkipTurn},
	{ID: 2, Name: "Reverse", Price: 60, Description: "Reverse the turn order", Effect: models.EffectReverseOrder},
	{ID: 3, Name: "Double Score", Price: 80, Description: "Double the score of the current turn", Effect: models.EffectDoubleScore},
	{ID: 4, Name: "Extra Time", Price: 40, Description: "Add extra answer time", Effect: models.EffectExtraTime},
	{ID: 5, Name: "Power Score", Price: 60, Description: "Half the base score again on top", Effect: models.EffectPowerScore},
	{ID: 6, Name: "Ghost Turn", Price: 90, Description: "Answer one extra card for free", Effect: models.EffectGhostTurn},
	{ID: 7, Name: "Point Steal", Price: 100, Description: "Steal points from the leading opponent", Effect: models.EffectPointSteal},

	{ID: 1001, Name: "1,000 Token Pack", Price: 100_000, Description: "Top up 1,000 tokens", Effect: "TOKEN_PACKAGE_1000", Tokens: 1_000},
	{ID: 1002, Name: "5,000 Token Pack", Price: 450_000, Description: "Top up 5,000 tokens", Effect: "TOKEN_PACKAGE_5000", Tokens: 5_000},
	{ID: 1003, Name: "10,000 Token Pack", Price: 800_000, Description: "Top up 10,000 tokens", Effect: "TOKEN_PACKAGE_10000", Tokens: 10_000},
}

func catalogItem(id int) (StoreItem, bool) {
	for _, it := range storeCatalog {
		if it.ID == id {
			return it, true
		}
	}
	return StoreItem{}, false
}

func (a *API) StoreItems(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := a.requireUser(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": storeCatalog})
}

type purchaseRequest struct {
	ItemID   int `json:"item_id"`
	Quantity int `json:"quantity"`
}

// PurchaseItem sells effect items for tokens. Token packages must go
// through the payment flow instead.
func (a *API) PurchaseItem(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	entry, found := catalogItem(req.ItemID)
	if !found {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	if entry.Tokens > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":       "token packages are paid through the payment gateway",
			"redirect_to": "/api/payments",
			"package_id":  entry.ID,
		})
		return
	}

	item, err := database.EnsureItem(r.Context(), entry.Effect, entry.Name, entry.Description)
	if err != nil {
		a.Log.Errorf("ensure item failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to resolve item")
		return
	}

	cost := entry.Price * req.Quantity
	if err := database.PurchaseItem(r.Context(), userID, item.ID, req.Quantity, cost); err != nil {
		if errors.Is(err, database.ErrInsufficientTokens) {
			writeError(w, http.StatusBadRequest, "not enough tokens")
			return
		}
		a.Log.Errorf("purchase failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to purchase item")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "purchased",
		"item_id":  item.ID,
		"quantity": req.Quantity,
		"cost":     cost,
	})
}

func (a *API) Inventory(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	inv, err := database.ListInventory(r.Context(), userID)
	if err != nil {
		a.Log.Errorf("inventory read failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to read inventory")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": inv})
}
