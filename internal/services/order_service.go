package services

import (
	"context"
	"log"
	"time"

	"dinemart/internal/caching"
	"dinemart/internal/common"
	"dinemart/internal/messaging"
	"dinemart/internal/models"
	"dinemart/internal/payments"
	"dinemart/internal/repositories"

	"github.com/google/uuid"
)

const orderCacheTTL = 5 * time.Minute

// CreateOrderRequest carries everything needed to place an order. Per-item
// unit prices are taken as given; the invoice is always recomputed from them,
// never trusted as a client-supplied total.
type CreateOrderRequest struct {
	RestaurantID    uuid.UUID              `json:"restaurant_id"`
	UserID          *uuid.UUID             `json:"user_id"`
	PaymentMethod   models.PaymentMethod   `json:"payment_method"`
	Items           []CreateOrderItem      `json:"items"`
	DeliveryAddress models.DeliveryAddress `json:"delivery_address"`
	Currency        string                 `json:"currency"`
	PaymentProvider string                 `json:"payment_provider"`
	Metadata        map[string]string      `json:"metadata"`
}

// CreateOrderItem is one requested line item.
type CreateOrderItem struct {
	MenuItemID          uuid.UUID `json:"menu_item_id"`
	Name                string    `json:"name"`
	Quantity            int       `json:"quantity"`
	UnitPrice           int64     `json:"unit_price"`
	SpecialInstructions *string   `json:"special_instructions"`
}

// OrderServiceInterface is the single entry point for order creation,
// retrieval, mutation and payment-linked checkout.
type OrderServiceInterface interface {
	Create(ctx context.Context, req *CreateOrderRequest) (*models.Order, error)
	FindAll(ctx context.Context, filter *models.OrderFilter) ([]*models.Order, error)
	FindOne(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, id uuid.UUID, patch *models.OrderPatch) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, target models.OrderStatus) (*models.Order, error)
	Cancel(ctx context.Context, id uuid.UUID) (*models.Order, error)
	CreateWithPayment(ctx context.Context, req *CreateOrderRequest) (*models.Order, error)
	VerifyPayment(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type orderService struct {
	orderRepo      repositories.OrderRepository
	restaurantRepo repositories.RestaurantRepository
	userRepo       repositories.UserRepository
	calculator     *InvoiceCalculator
	registry       *payments.Registry
	cache          caching.CacheService
	publisher      messaging.EventPublisher
}

// NewOrderService creates a new order service instance. cache and publisher
// may be nil; both are best-effort collaborators.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	restaurantRepo repositories.RestaurantRepository,
	userRepo repositories.UserRepository,
	calculator *InvoiceCalculator,
	registry *payments.Registry,
	cache caching.CacheService,
	publisher messaging.EventPublisher,
) OrderServiceInterface {
	return &orderService{
		orderRepo:      orderRepo,
		restaurantRepo: restaurantRepo,
		userRepo:       userRepo,
		calculator:     calculator,
		registry:       registry,
		cache:          cache,
		publisher:      publisher,
	}
}

// Create validates the referenced restaurant and user, prices the items and
// persists the order with its items as one unit, status pending.
func (s *orderService) Create(ctx context.Context, req *CreateOrderRequest) (*models.Order, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	exists, err := s.restaurantRepo.Exists(ctx, req.RestaurantID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, common.NotFoundf("restaurant %s", req.RestaurantID)
	}

	if req.UserID != nil {
		exists, err := s.userRepo.Exists(ctx, *req.UserID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, common.NotFoundf("user %s", *req.UserID)
		}
	}

	orderID := uuid.New()
	items := make([]*models.OrderItem, 0, len(req.Items))
	for _, in := range req.Items {
		items = append(items, &models.OrderItem{
			ID:                  uuid.New(),
			OrderID:             orderID,
			MenuItemID:          in.MenuItemID,
			Name:                in.Name,
			Quantity:            in.Quantity,
			UnitPrice:           in.UnitPrice,
			TotalPrice:          int64(in.Quantity) * in.UnitPrice,
			SpecialInstructions: in.SpecialInstructions,
		})
	}

	order := &models.Order{
		ID:              orderID,
		RestaurantID:    req.RestaurantID,
		UserID:          req.UserID,
		Status:          models.OrderStatusPending,
		PaymentMethod:   req.PaymentMethod,
		Invoice:         s.calculator.Calculate(items, 0),
		DeliveryAddress: req.DeliveryAddress,
		Items:           items,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.publishCreated(ctx, order)
	return order, nil
}

// FindAll returns orders matching all supplied filters, newest first.
func (s *orderService) FindAll(ctx context.Context, filter *models.OrderFilter) ([]*models.Order, error) {
	if filter != nil && filter.Status != nil && !filter.Status.IsValid() {
		return nil, common.BusinessRulef("unknown order status '%s'", *filter.Status)
	}
	return s.orderRepo.List(ctx, filter)
}

func (s *orderService) FindOne(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetOrder(ctx, id); err == nil && cached != nil {
			return cached, nil
		}
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, common.NotFoundf("order %s", id)
	}

	if s.cache != nil {
		if err := s.cache.SetOrder(ctx, order, orderCacheTTL); err != nil {
			log.Printf("WARN: failed to cache order %s: %v", id, err)
		}
	}
	return order, nil
}

// Update applies an explicit field patch. A status change must pass the
// transition graph before anything is applied; other fields are last-write-wins.
func (s *orderService) Update(ctx context.Context, id uuid.UUID, patch *models.OrderPatch) (*models.Order, error) {
	order, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := order.Status
	if patch.Status != nil && *patch.Status != order.Status {
		if !patch.Status.IsValid() {
			return nil, common.BusinessRulef("unknown order status '%s'", *patch.Status)
		}
		if !order.Status.CanTransitionTo(*patch.Status) {
			return nil, common.InvalidTransitionf("cannot transition from %s to %s", order.Status, *patch.Status)
		}
		order.Status = *patch.Status
	}

	if patch.PaymentMethod != nil {
		if !patch.PaymentMethod.IsValid() {
			return nil, common.BusinessRulef("unknown payment method '%s'", *patch.PaymentMethod)
		}
		order.PaymentMethod = *patch.PaymentMethod
	}
	if patch.DeliveryAddress != nil {
		order.DeliveryAddress = *patch.DeliveryAddress
	}
	if patch.PaymentProvider != nil {
		order.PaymentProvider = patch.PaymentProvider
	}
	if patch.PaymentID != nil {
		order.PaymentID = patch.PaymentID
	}
	if patch.PaymentStatus != nil {
		order.PaymentStatus = patch.PaymentStatus
	}

	order.UpdatedAt = time.Now()
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.invalidate(ctx, order.ID)
	if order.Status != previous {
		s.publishStatusChanged(ctx, order, previous)
	}
	return order, nil
}

// UpdateStatus is Update restricted to the status field.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, target models.OrderStatus) (*models.Order, error) {
	return s.Update(ctx, id, &models.OrderPatch{Status: &target})
}

// Cancel is the narrow convenience path: only pending orders qualify, even
// though the general status-update path also allows preparing -> cancelled.
func (s *orderService) Cancel(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.Status != models.OrderStatusPending {
		return nil, common.BusinessRulef("only pending orders can be cancelled")
	}

	previous := order.Status
	order.Status = models.OrderStatusCancelled
	order.UpdatedAt = time.Now()
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.invalidate(ctx, order.ID)
	s.publishStatusChanged(ctx, order, previous)
	return order, nil
}

// CreateWithPayment creates the order, then initiates payment for the invoice
// total. On gateway failure the order stays persisted in pending with no
// payment attached; the caller retries payment separately.
func (s *orderService) CreateWithPayment(ctx context.Context, req *CreateOrderRequest) (*models.Order, error) {
	order, err := s.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	provider := req.PaymentProvider
	if provider == "" {
		provider = payments.DefaultProvider
	}

	resp, err := s.registry.Initiate(ctx, order.Invoice.Total, provider, req.Currency, req.Metadata)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, common.GatewayFailuref("payment initiation failed: %s", resp.Error)
	}

	processing := string(payments.StatusProcessing)
	order.PaymentProvider = &provider
	order.PaymentID = &resp.PaymentID
	order.PaymentStatus = &processing
	order.UpdatedAt = time.Now()
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.invalidate(ctx, order.ID)
	return order, nil
}

// VerifyPayment re-checks the gateway and writes the mapped status back. Only
// a gateway-confirmed success advances the order to preparing.
func (s *orderService) VerifyPayment(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.HasPaymentInfo() {
		return nil, common.BusinessRulef("order %s has no payment information", id)
	}

	resp, err := s.registry.Verify(ctx, *order.PaymentID, *order.PaymentProvider)
	if err != nil {
		return nil, err
	}

	previous := order.Status
	status := string(resp.Status)
	order.PaymentStatus = &status
	if resp.Success && resp.Status == payments.StatusSuccess && order.Status == models.OrderStatusPending {
		order.Status = models.OrderStatusPreparing
	}

	order.UpdatedAt = time.Now()
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.invalidate(ctx, order.ID)
	if order.Status != previous {
		s.publishStatusChanged(ctx, order, previous)
	}
	return order, nil
}

func (s *orderService) validateRequest(req *CreateOrderRequest) error {
	if req.RestaurantID == uuid.Nil {
		return common.BusinessRulef("restaurant_id is required")
	}
	if !req.PaymentMethod.IsValid() {
		return common.BusinessRulef("unknown payment method '%s'", req.PaymentMethod)
	}
	if len(req.Items) == 0 {
		return common.BusinessRulef("order must contain at least one item")
	}
	for i, item := range req.Items {
		if item.MenuItemID == uuid.Nil {
			return common.BusinessRulef("items[%d].menu_item_id is required", i)
		}
		if item.Name == "" {
			return common.BusinessRulef("items[%d].name is required", i)
		}
		if item.Quantity < 1 {
			return common.BusinessRulef("items[%d].quantity must be at least 1", i)
		}
		if item.UnitPrice < 0 {
			return common.BusinessRulef("items[%d].unit_price cannot be negative", i)
		}
	}
	addr := req.DeliveryAddress
	if addr.Street == "" || addr.City == "" || addr.State == "" || addr.ZipCode == "" || addr.Country == "" {
		return common.BusinessRulef("delivery address requires street, city, state, zip_code and country")
	}
	return nil
}

func (s *orderService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteOrder(ctx, id); err != nil {
		log.Printf("WARN: failed to invalidate order cache %s: %v", id, err)
	}
	if err := s.cache.Delete(ctx, caching.ReceiptURLKey(id)); err != nil {
		log.Printf("WARN: failed to invalidate receipt URL cache %s: %v", id, err)
	}
}

func (s *orderService) publishCreated(ctx context.Context, order *models.Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
		log.Printf("WARN: failed to publish order.created for %s: %v", order.ID, err)
	}
}

func (s *orderService) publishStatusChanged(ctx context.Context, order *models.Order, previous models.OrderStatus) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderStatusChanged(ctx, order, previous); err != nil {
		log.Printf("WARN: failed to publish order.status_changed for %s: %v", order.ID, err)
	}
}
