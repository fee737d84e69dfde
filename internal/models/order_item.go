package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderItem struct {
	ID                  uuid.UUID `json:"id" db:"id"`
	OrderID             uuid.UUID `json:"order_id" db:"order_id"`
	MenuItemID          uuid.UUID `json:"menu_item_id" db:"menu_item_id"`
	Name                string    `json:"name" db:"name"`
	Quantity            int       `json:"quantity" db:"quantity"`
	UnitPrice           int64     `json:"unit_price" db:"unit_price"`
	TotalPrice          int64     `json:"total_price" db:"total_price"`
	SpecialInstructions *string   `json:"special_instructions" db:"special_instructions"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}
