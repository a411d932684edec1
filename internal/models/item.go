package models

import (
	"time"

	"github.com/google/uuid"
)

// EffectKind is the closed set of item effects a match card can carry.
type EffectKind string

const (
	EffectDoubleScore  EffectKind = "DOUBLE_SCORE"
	EffectPowerScore   EffectKind = "POWER_SCORE"
	EffectGhostTurn    EffectKind = "GHOST_TURN"
	EffectPointSteal   EffectKind = "POINT_STEAL"
	EffectSkipTurn     EffectKind = "SKIP_TURN"
	EffectReverseOrder EffectKind = "REVERSE_ORDER"
	EffectExtraTime    EffectKind = "EXTRA_TIME"
)

// Item is a purchasable effect card. Rows are created lazily the first time
// a store item of a given effect is bought.
type Item struct {
	ID          uuid.UUID  `json:"id"`
	Effect      EffectKind `json:"effect"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
}

// InventoryItem tracks how many of an item a user owns. Quantity is
// decremented when the item is brought into a match.
type InventoryItem struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ItemID    uuid.UUID `json:"item_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`

	Item *Item `json:"item,omitempty"`
}

// MatchPlayerItem records a single use of an item inside a match.
type MatchPlayerItem struct {
	ID        uuid.UUID `json:"id"`
	MatchID   uuid.UUID `json:"match_id"`
	UserID    uuid.UUID `json:"user_id"`
	ItemID    uuid.UUID `json:"item_id"`
	CreatedAt time.Time `json:"created_at"`
}
