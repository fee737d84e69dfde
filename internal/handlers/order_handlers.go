package handlers

import (
	"net/http"

	"dinemart/internal/common"
	"dinemart/internal/models"
	"dinemart/internal/services"

	"github.com/labstack/echo/v4"
)

// OrderHandlers handles HTTP requests for orders
type OrderHandlers struct {
	orderService services.OrderServiceInterface
}

// NewOrderHandlers creates a new order handlers instance
func NewOrderHandlers(orderService services.OrderServiceInterface) *OrderHandlers {
	return &OrderHandlers{orderService: orderService}
}

type createOrderRequest struct {
	RestaurantID    string                 `json:"restaurant_id"`
	UserID          *string                `json:"user_id"`
	PaymentMethod   string                 `json:"payment_method"`
	Items           []createOrderItem      `json:"items"`
	DeliveryAddress models.DeliveryAddress `json:"delivery_address"`
	Currency        string                 `json:"currency"`
	Provider        string                 `json:"provider"`
	Metadata        map[string]string      `json:"metadata"`
}

type createOrderItem struct {
	MenuItemID          string  `json:"menu_item_id"`
	Name                string  `json:"name"`
	Quantity            int     `json:"quantity"`
	UnitPrice           int64   `json:"unit_price"`
	SpecialInstructions *string `json:"special_instructions"`
}

func (h *OrderHandlers) buildCreateRequest(c echo.Context) (*services.CreateOrderRequest, error) {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return nil, common.SendClientError(c, "Invalid request format")
	}

	restaurantID, err := common.ValidateUUID(req.RestaurantID, "restaurant_id")
	if err != nil {
		return nil, common.SendClientError(c, err.Error())
	}

	out := &services.CreateOrderRequest{
		RestaurantID:    restaurantID,
		PaymentMethod:   models.PaymentMethod(req.PaymentMethod),
		DeliveryAddress: req.DeliveryAddress,
		Currency:        req.Currency,
		PaymentProvider: req.Provider,
		Metadata:        req.Metadata,
	}

	// Clients always order as themselves; only admins may place an order on
	// behalf of another user or as a guest.
	role, _ := common.GetRoleFromContext(c.Request().Context())
	if role != models.RoleAdmin {
		if userID, ok := common.GetUserIDFromContext(c.Request().Context()); ok {
			out.UserID = &userID
		}
	} else if req.UserID != nil && *req.UserID != "" {
		userID, err := common.ValidateUUID(*req.UserID, "user_id")
		if err != nil {
			return nil, common.SendClientError(c, err.Error())
		}
		out.UserID = &userID
	}

	for _, item := range req.Items {
		menuItemID, err := common.ValidateUUID(item.MenuItemID, "menu_item_id")
		if err != nil {
			return nil, common.SendClientError(c, err.Error())
		}
		if err := common.ValidatePositiveInteger(item.Quantity, "quantity", 10000); err != nil {
			return nil, common.SendValidationError(c, "quantity", err.Error())
		}
		if err := common.ValidateNonNegativeAmount(item.UnitPrice, "unit_price"); err != nil {
			return nil, common.SendValidationError(c, "unit_price", err.Error())
		}
		out.Items = append(out.Items, services.CreateOrderItem{
			MenuItemID:          menuItemID,
			Name:                item.Name,
			Quantity:            item.Quantity,
			UnitPrice:           item.UnitPrice,
			SpecialInstructions: item.SpecialInstructions,
		})
	}

	return out, nil
}

// CreateOrder handles POST /orders
func (h *OrderHandlers) CreateOrder(c echo.Context) error {
	req, err := h.buildCreateRequest(c)
	if req == nil {
		return err
	}

	order, err := h.orderService.Create(c.Request().Context(), req)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// CreateOrderWithPayment handles POST /orders/with-payment
func (h *OrderHandlers) CreateOrderWithPayment(c echo.Context) error {
	req, err := h.buildCreateRequest(c)
	if req == nil {
		return err
	}

	order, err := h.orderService.CreateWithPayment(c.Request().Context(), req)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// GetOrders handles GET /orders
func (h *OrderHandlers) GetOrders(c echo.Context) error {
	filter := &models.OrderFilter{}

	if restaurantID := c.QueryParam("restaurantId"); restaurantID != "" {
		id, err := common.ValidateUUID(restaurantID, "restaurantId")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		filter.RestaurantID = &id
	}
	if userID := c.QueryParam("userId"); userID != "" {
		id, err := common.ValidateUUID(userID, "userId")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		filter.UserID = &id
	}
	if status := c.QueryParam("status"); status != "" {
		s := models.OrderStatus(status)
		filter.Status = &s
	}

	orders, err := h.orderService.FindAll(c.Request().Context(), filter)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// GetMyOrders handles GET /orders/my-orders
func (h *OrderHandlers) GetMyOrders(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	orders, err := h.orderService.FindAll(c.Request().Context(), &models.OrderFilter{UserID: &userID})
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// GetRestaurantOrders handles GET /orders/restaurant-orders
func (h *OrderHandlers) GetRestaurantOrders(c echo.Context) error {
	restaurantID, ok := common.GetRestaurantIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	orders, err := h.orderService.FindAll(c.Request().Context(), &models.OrderFilter{RestaurantID: &restaurantID})
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandlers) GetOrder(c echo.Context) error {
	order, err := h.loadOwnedOrder(c)
	if order == nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateOrder handles PATCH /orders/:id
func (h *OrderHandlers) UpdateOrder(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var patch models.OrderPatch
	if err := c.Bind(&patch); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	order, err := h.orderService.Update(c.Request().Context(), id, &patch)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus handles PATCH /orders/:id/status/:status
func (h *OrderHandlers) UpdateOrderStatus(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	target := models.OrderStatus(c.Param("status"))
	if !target.IsValid() {
		return common.SendValidationError(c, "status", "unknown order status")
	}

	order, err := h.orderService.UpdateStatus(c.Request().Context(), id, target)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// CancelOrder handles PATCH /orders/:id/cancel
func (h *OrderHandlers) CancelOrder(c echo.Context) error {
	order, err := h.loadOwnedOrder(c)
	if order == nil {
		return err
	}

	cancelled, err := h.orderService.Cancel(c.Request().Context(), order.ID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, cancelled)
}

// VerifyOrderPayment handles POST /orders/:id/verify-payment
func (h *OrderHandlers) VerifyOrderPayment(c echo.Context) error {
	order, err := h.loadOwnedOrder(c)
	if order == nil {
		return err
	}

	verified, err := h.orderService.VerifyPayment(c.Request().Context(), order.ID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, verified)
}

// loadOwnedOrder fetches the order and hides it from callers who do not own
// it: clients see only their own orders, restaurant operators only their
// restaurant's. A nil order means the error response has already been written.
func (h *OrderHandlers) loadOwnedOrder(c echo.Context) (*models.Order, error) {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return nil, common.SendClientError(c, err.Error())
	}

	order, err := h.orderService.FindOne(c.Request().Context(), id)
	if err != nil {
		return nil, common.SendDomainError(c, err)
	}

	ctx := c.Request().Context()
	role, _ := common.GetRoleFromContext(ctx)
	switch role {
	case models.RoleClient:
		userID, ok := common.GetUserIDFromContext(ctx)
		if !ok || order.UserID == nil || *order.UserID != userID {
			return nil, common.SendNotFoundError(c, "Order")
		}
	case models.RoleRestaurantAdmin:
		restaurantID, ok := common.GetRestaurantIDFromContext(ctx)
		if !ok || order.RestaurantID != restaurantID {
			return nil, common.SendNotFoundError(c, "Order")
		}
	}
	return order, nil
}
