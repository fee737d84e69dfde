package handlers

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"time"

	"dinemart/internal/caching"
	"dinemart/internal/common"
	"dinemart/internal/models"
	"dinemart/internal/repositories"
	"dinemart/internal/services"

	"github.com/jung-kurt/gofpdf"
	"github.com/labstack/echo/v4"
)

const (
	receiptBucket = "receipts"
	// Cached URLs expire before the presigned link itself does.
	receiptURLTTL = 23 * time.Hour
)

// ReceiptHandlers renders order invoices to PDF and stores them.
type ReceiptHandlers struct {
	orderService   services.OrderServiceInterface
	minioSvc       services.MinioService
	restaurantRepo repositories.RestaurantRepository
	userRepo       repositories.UserRepository
	cache          caching.CacheService
}

// NewReceiptHandlers creates a new receipt handlers instance. cache may be
// nil; it only short-circuits regeneration.
func NewReceiptHandlers(
	orderService services.OrderServiceInterface,
	minioSvc services.MinioService,
	restaurantRepo repositories.RestaurantRepository,
	userRepo repositories.UserRepository,
	cache caching.CacheService,
) *ReceiptHandlers {
	return &ReceiptHandlers{
		orderService:   orderService,
		minioSvc:       minioSvc,
		restaurantRepo: restaurantRepo,
		userRepo:       userRepo,
		cache:          cache,
	}
}

// GenerateReceipt handles POST /orders/:id/receipt. The invoice snapshot is
// rendered to PDF, uploaded to object storage and returned as a presigned
// URL. A previously signed URL is served from cache until it nears expiry.
func (h *ReceiptHandlers) GenerateReceipt(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if h.cache != nil {
		if url, err := h.cache.GetString(ctx, caching.ReceiptURLKey(id)); err == nil && url != "" {
			return c.JSON(http.StatusOK, map[string]string{
				"order_id":    id.String(),
				"receipt_url": url,
			})
		}
	}

	order, svcErr := h.orderService.FindOne(ctx, id)
	if svcErr != nil {
		return common.SendDomainError(c, svcErr)
	}

	pdfBytes, err := renderReceiptPDF(order, h.lookupNames(c, order))
	if err != nil {
		return common.SendServerError(c, "Failed to render receipt: "+err.Error())
	}

	if err := h.minioSvc.EnsureBucketExists(ctx, receiptBucket); err != nil {
		return common.SendServerError(c, "Failed to prepare storage: "+err.Error())
	}

	objectName := fmt.Sprintf("%s.pdf", order.ID)
	if err := h.minioSvc.UploadObject(ctx, receiptBucket, objectName, "application/pdf", bytes.NewReader(pdfBytes), int64(len(pdfBytes))); err != nil {
		return common.SendServerError(c, "Failed to store receipt: "+err.Error())
	}

	url, err := h.minioSvc.GetPresignedURL(ctx, receiptBucket, objectName, 24*time.Hour)
	if err != nil {
		return common.SendServerError(c, "Failed to sign receipt URL: "+err.Error())
	}

	if h.cache != nil {
		if err := h.cache.SetString(ctx, caching.ReceiptURLKey(order.ID), url, receiptURLTTL); err != nil {
			log.Printf("WARN: failed to cache receipt URL for order %s: %v", order.ID, err)
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"order_id":    order.ID.String(),
		"receipt_url": url,
	})
}

// receiptNames carry the display names resolved for the receipt header.
// Either may be empty; the PDF just omits the line.
type receiptNames struct {
	restaurant string
	customer   string
}

// lookupNames resolves restaurant and customer display names, best-effort.
func (h *ReceiptHandlers) lookupNames(c echo.Context, order *models.Order) receiptNames {
	ctx := c.Request().Context()
	var names receiptNames

	if h.restaurantRepo != nil {
		restaurant, err := h.restaurantRepo.GetByID(ctx, order.RestaurantID)
		if err != nil {
			log.Printf("WARN: failed to resolve restaurant %s for receipt: %v", order.RestaurantID, err)
		} else if restaurant != nil {
			names.restaurant = restaurant.Name
		}
	}

	if h.userRepo != nil && order.UserID != nil {
		user, err := h.userRepo.GetByID(ctx, *order.UserID)
		if err != nil {
			log.Printf("WARN: failed to resolve user %s for receipt: %v", *order.UserID, err)
		} else if user != nil {
			names.customer = user.FullName
		}
	}

	return names
}

func renderReceiptPDF(order *models.Order, names receiptNames) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	title := "Order Receipt"
	if names.restaurant != "" {
		title = names.restaurant
	}
	pdf.Cell(0, 10, title)
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Order: %s", order.ID))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", order.CreatedAt.Format("2006-01-02 15:04")))
	pdf.Ln(6)
	if names.customer != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Customer: %s", names.customer))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Payment method: %s", order.PaymentMethod))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(90, 7, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, "Qty", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Unit", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Total", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, line := range order.Invoice.Items {
		pdf.CellFormat(90, 7, line.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", line.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, formatMinorUnits(line.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, formatMinorUnits(line.Total), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	writeTotalRow(pdf, "Subtotal", order.Invoice.Subtotal)
	writeTotalRow(pdf, "Delivery fee", order.Invoice.DeliveryFee)
	writeTotalRow(pdf, "Tax", order.Invoice.Tax)
	if order.Invoice.Discount != 0 {
		writeTotalRow(pdf, "Discount", -order.Invoice.Discount)
	}
	pdf.SetFont("Arial", "B", 10)
	writeTotalRow(pdf, "Total", order.Invoice.Total)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeTotalRow(pdf *gofpdf.Fpdf, label string, amount int64) {
	pdf.CellFormat(145, 7, label, "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, formatMinorUnits(amount), "", 1, "R", false, 0, "")
}

func formatMinorUnits(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}
