package models

import (
	"time"

	"github.com/google/uuid"
)

// StockAdjustmentType classifies why a stock quantity changed.
type StockAdjustmentType string

const (
	StockAdjustmentRestock    StockAdjustmentType = "restock"
	StockAdjustmentUsage      StockAdjustmentType = "usage"
	StockAdjustmentWaste      StockAdjustmentType = "waste"
	StockAdjustmentCorrection StockAdjustmentType = "correction"
)

// IsValid reports whether t is a known adjustment type.
func (t StockAdjustmentType) IsValid() bool {
	switch t {
	case StockAdjustmentRestock, StockAdjustmentUsage, StockAdjustmentWaste, StockAdjustmentCorrection:
		return true
	}
	return false
}

// StockItem tracks one ingredient's on-hand quantity at one restaurant.
// The (restaurant_id, ingredient_id) pair is unique.
type StockItem struct {
	ID                 uuid.UUID  `json:"id" db:"id"`
	RestaurantID       uuid.UUID  `json:"restaurant_id" db:"restaurant_id"`
	IngredientID       uuid.UUID  `json:"ingredient_id" db:"ingredient_id"`
	QuantityInBaseUnit int64      `json:"quantity_in_base_unit" db:"quantity_in_base_unit"`
	LowThreshold       int64      `json:"low_threshold" db:"low_threshold"`
	LastRestockedAt    *time.Time `json:"last_restocked_at" db:"last_restocked_at"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// StockAdjustment is the audit row recorded for every stock change.
type StockAdjustment struct {
	ID             uuid.UUID           `json:"id" db:"id"`
	StockItemID    uuid.UUID           `json:"stock_item_id" db:"stock_item_id"`
	UserID         *uuid.UUID          `json:"user_id" db:"user_id"`
	AdjustmentType StockAdjustmentType `json:"adjustment_type" db:"adjustment_type"`
	QuantityChange int64               `json:"quantity_change" db:"quantity_change"`
	NewQuantity    int64               `json:"new_quantity" db:"new_quantity"`
	Reason         *string             `json:"reason" db:"reason"`
	Reference      *string             `json:"reference" db:"reference"`
	CreatedAt      time.Time           `json:"created_at" db:"created_at"`
}
