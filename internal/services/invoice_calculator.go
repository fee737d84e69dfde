package services

import (
	"dinemart/internal/models"
)

// Default pricing parameters, in minor currency units and basis points.
const (
	DefaultDeliveryFee = int64(500)
	DefaultTaxRateBP   = int64(800) // 8%
)

// InvoiceCalculator prices order line items into an Invoice. Pure and
// deterministic: no I/O, no clock, integer arithmetic only.
type InvoiceCalculator struct {
	deliveryFee int64
	taxRateBP   int64
}

func NewInvoiceCalculator(deliveryFee, taxRateBP int64) *InvoiceCalculator {
	return &InvoiceCalculator{deliveryFee: deliveryFee, taxRateBP: taxRateBP}
}

func NewDefaultInvoiceCalculator() *InvoiceCalculator {
	return NewInvoiceCalculator(DefaultDeliveryFee, DefaultTaxRateBP)
}

// Calculate prices the given items. Tax rounds half-up to the nearest minor
// unit. Discount defaults to zero; total = subtotal + fee + tax - discount.
func (c *InvoiceCalculator) Calculate(items []*models.OrderItem, discount int64) models.Invoice {
	var subtotal int64
	lines := make([]models.InvoiceLine, 0, len(items))

	for _, item := range items {
		lineTotal := int64(item.Quantity) * item.UnitPrice
		subtotal += lineTotal
		lines = append(lines, models.InvoiceLine{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			Price:      item.UnitPrice,
			Total:      lineTotal,
		})
	}

	tax := (subtotal*c.taxRateBP + 5000) / 10000

	return models.Invoice{
		Subtotal:    subtotal,
		DeliveryFee: c.deliveryFee,
		Tax:         tax,
		Discount:    discount,
		Total:       subtotal + c.deliveryFee + tax - discount,
		Items:       lines,
	}
}
