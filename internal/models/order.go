package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the order lifecycle state.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPreparing  OrderStatus = "preparing"
	OrderStatusOnDelivery OrderStatus = "on_delivery"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// orderTransitions is the fixed transition graph. completed and cancelled are
// terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing:  {OrderStatusOnDelivery, OrderStatusCancelled},
	OrderStatusOnDelivery: {OrderStatusCompleted},
	OrderStatusCompleted:  {},
	OrderStatusCancelled:  {},
}

// IsValid reports whether s is a known order status.
func (s OrderStatus) IsValid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether target is reachable from s in one step.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// PaymentMethod is how the customer intends to pay.
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodWallet PaymentMethod = "wallet"
	PaymentMethodCash   PaymentMethod = "cash"
)

// IsValid reports whether m is a known payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodWallet, PaymentMethodCash:
		return true
	}
	return false
}

// DeliveryAddress is stored as jsonb on the order.
type DeliveryAddress struct {
	Street       string  `json:"street"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	ZipCode      string  `json:"zip_code"`
	Country      string  `json:"country"`
	Apartment    *string `json:"apartment,omitempty"`
	Instructions *string `json:"instructions,omitempty"`
}

type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	RestaurantID    uuid.UUID       `json:"restaurant_id" db:"restaurant_id"`
	UserID          *uuid.UUID      `json:"user_id" db:"user_id"`
	Status          OrderStatus     `json:"status" db:"status"`
	PaymentMethod   PaymentMethod   `json:"payment_method" db:"payment_method"`
	Invoice         Invoice         `json:"invoice" db:"invoice"`
	DeliveryAddress DeliveryAddress `json:"delivery_address" db:"delivery_address"`
	PaymentProvider *string         `json:"payment_provider" db:"payment_provider"`
	PaymentID       *string         `json:"payment_id" db:"payment_id"`
	PaymentStatus   *string         `json:"payment_status" db:"payment_status"`
	Items           []*OrderItem    `json:"items"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// HasPaymentInfo reports whether a payment was attached to the order.
func (o *Order) HasPaymentInfo() bool {
	return o.PaymentProvider != nil && o.PaymentID != nil
}

// OrderFilter narrows ListOrders results. Filters are AND-combined; a nil
// field means no restriction on it.
type OrderFilter struct {
	RestaurantID *uuid.UUID   `json:"restaurant_id,omitempty"`
	UserID       *uuid.UUID   `json:"user_id,omitempty"`
	Status       *OrderStatus `json:"status,omitempty"`
}

// OrderPatch enumerates the updatable order fields, each independently
// optional. A status change must pass the transition graph before any other
// field is applied.
type OrderPatch struct {
	Status          *OrderStatus     `json:"status,omitempty"`
	PaymentMethod   *PaymentMethod   `json:"payment_method,omitempty"`
	DeliveryAddress *DeliveryAddress `json:"delivery_address,omitempty"`
	PaymentProvider *string          `json:"payment_provider,omitempty"`
	PaymentID       *string          `json:"payment_id,omitempty"`
	PaymentStatus   *string          `json:"payment_status,omitempty"`
}
