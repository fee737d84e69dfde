package handlers

import (
	"net/http"

	"dinemart/internal/common"
	"dinemart/internal/models"
	"dinemart/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// StockHandlers handles HTTP requests for stock items
type StockHandlers struct {
	stockService services.StockServiceInterface
}

// NewStockHandlers creates a new stock handlers instance
func NewStockHandlers(stockService services.StockServiceInterface) *StockHandlers {
	return &StockHandlers{stockService: stockService}
}

// CreateStockItem handles POST /stock
func (h *StockHandlers) CreateStockItem(c echo.Context) error {
	var req struct {
		RestaurantID       string `json:"restaurant_id"`
		IngredientID       string `json:"ingredient_id"`
		QuantityInBaseUnit int64  `json:"quantity_in_base_unit"`
		LowThreshold       int64  `json:"low_threshold"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	restaurantID, err := common.ValidateUUID(req.RestaurantID, "restaurant_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	ingredientID, err := common.ValidateUUID(req.IngredientID, "ingredient_id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	item, err := h.stockService.Create(c.Request().Context(), &services.CreateStockItemRequest{
		RestaurantID:       restaurantID,
		IngredientID:       ingredientID,
		QuantityInBaseUnit: req.QuantityInBaseUnit,
		LowThreshold:       req.LowThreshold,
	})
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

// ListStockItems handles GET /stock
func (h *StockHandlers) ListStockItems(c echo.Context) error {
	restaurantID, err := h.optionalRestaurantFilter(c)
	if err != nil {
		return err
	}

	items, svcErr := h.stockService.FindAll(c.Request().Context(), restaurantID)
	if svcErr != nil {
		return common.SendDomainError(c, svcErr)
	}
	return c.JSON(http.StatusOK, items)
}

// GetStockItem handles GET /stock/:id
func (h *StockHandlers) GetStockItem(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	item, svcErr := h.stockService.FindOne(c.Request().Context(), id)
	if svcErr != nil {
		return common.SendDomainError(c, svcErr)
	}
	return c.JSON(http.StatusOK, item)
}

// AdjustStock handles POST /stock/:id/adjust
func (h *StockHandlers) AdjustStock(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		AdjustmentType string  `json:"adjustment_type"`
		QuantityChange int64   `json:"quantity_change"`
		Reason         *string `json:"reason"`
		Reference      *string `json:"reference"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	adjust := &services.AdjustStockRequest{
		AdjustmentType: models.StockAdjustmentType(req.AdjustmentType),
		QuantityChange: req.QuantityChange,
		Reason:         req.Reason,
		Reference:      req.Reference,
	}
	if userID, ok := common.GetUserIDFromContext(c.Request().Context()); ok {
		adjust.UserID = &userID
	}

	item, svcErr := h.stockService.Adjust(c.Request().Context(), id, adjust)
	if svcErr != nil {
		return common.SendDomainError(c, svcErr)
	}
	return c.JSON(http.StatusOK, item)
}

// GetLowStock handles GET /stock/low
func (h *StockHandlers) GetLowStock(c echo.Context) error {
	restaurantID, err := h.optionalRestaurantFilter(c)
	if err != nil {
		return err
	}

	items, svcErr := h.stockService.LowStock(c.Request().Context(), restaurantID)
	if svcErr != nil {
		return common.SendDomainError(c, svcErr)
	}
	return c.JSON(http.StatusOK, items)
}

// GetStockAdjustments handles GET /stock/:id/adjustments
func (h *StockHandlers) GetStockAdjustments(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	adjustments, svcErr := h.stockService.Adjustments(c.Request().Context(), id)
	if svcErr != nil {
		return common.SendDomainError(c, svcErr)
	}
	return c.JSON(http.StatusOK, adjustments)
}

func (h *StockHandlers) optionalRestaurantFilter(c echo.Context) (*uuid.UUID, error) {
	param := c.QueryParam("restaurantId")
	if param == "" {
		return nil, nil
	}
	id, err := common.ValidateUUID(param, "restaurantId")
	if err != nil {
		return nil, common.SendClientError(c, err.Error())
	}
	return &id, nil
}
