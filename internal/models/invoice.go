package models

import "github.com/google/uuid"

// Invoice is the pricing breakdown computed at order creation and stored as
// jsonb on the order. All amounts are integer minor currency units.
type Invoice struct {
	Subtotal    int64         `json:"subtotal"`
	DeliveryFee int64         `json:"delivery_fee"`
	Tax         int64         `json:"tax"`
	Discount    int64         `json:"discount"`
	Total       int64         `json:"total"`
	Items       []InvoiceLine `json:"items"`
}

// InvoiceLine is one priced line of the invoice snapshot.
type InvoiceLine struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	Price      int64     `json:"price"`
	Total      int64     `json:"total"`
}
