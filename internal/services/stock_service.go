package services

import (
	"context"
	"time"

	"dinemart/internal/common"
	"dinemart/internal/models"
	"dinemart/internal/repositories"

	"github.com/google/uuid"
)

// CreateStockItemRequest registers an ingredient's stock at a restaurant.
type CreateStockItemRequest struct {
	RestaurantID       uuid.UUID `json:"restaurant_id"`
	IngredientID       uuid.UUID `json:"ingredient_id"`
	QuantityInBaseUnit int64     `json:"quantity_in_base_unit"`
	LowThreshold       int64     `json:"low_threshold"`
}

// AdjustStockRequest changes a stock quantity and records why.
type AdjustStockRequest struct {
	UserID         *uuid.UUID                 `json:"user_id"`
	AdjustmentType models.StockAdjustmentType `json:"adjustment_type"`
	QuantityChange int64                      `json:"quantity_change"`
	Reason         *string                    `json:"reason"`
	Reference      *string                    `json:"reference"`
}

type StockServiceInterface interface {
	Create(ctx context.Context, req *CreateStockItemRequest) (*models.StockItem, error)
	FindOne(ctx context.Context, id uuid.UUID) (*models.StockItem, error)
	FindAll(ctx context.Context, restaurantID *uuid.UUID) ([]*models.StockItem, error)
	Adjust(ctx context.Context, id uuid.UUID, req *AdjustStockRequest) (*models.StockItem, error)
	LowStock(ctx context.Context, restaurantID *uuid.UUID) ([]*models.StockItem, error)
	Adjustments(ctx context.Context, id uuid.UUID) ([]*models.StockAdjustment, error)
}

type stockService struct {
	stockRepo      repositories.StockRepository
	restaurantRepo repositories.RestaurantRepository
}

func NewStockService(stockRepo repositories.StockRepository, restaurantRepo repositories.RestaurantRepository) StockServiceInterface {
	return &stockService{stockRepo: stockRepo, restaurantRepo: restaurantRepo}
}

// Create registers a stock item. One stock item per ingredient+restaurant.
func (s *stockService) Create(ctx context.Context, req *CreateStockItemRequest) (*models.StockItem, error) {
	if req.QuantityInBaseUnit < 0 {
		return nil, common.BusinessRulef("initial quantity cannot be negative")
	}

	exists, err := s.stockRepo.IngredientExists(ctx, req.IngredientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, common.NotFoundf("ingredient %s", req.IngredientID)
	}

	restaurantExists, err := s.restaurantRepo.Exists(ctx, req.RestaurantID)
	if err != nil {
		return nil, err
	}
	if !restaurantExists {
		return nil, common.NotFoundf("restaurant %s", req.RestaurantID)
	}

	existing, err := s.stockRepo.GetByIngredientAndRestaurant(ctx, req.IngredientID, req.RestaurantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, common.Conflictf("stock item already exists for this ingredient and restaurant")
	}

	item := &models.StockItem{
		ID:                 uuid.New(),
		RestaurantID:       req.RestaurantID,
		IngredientID:       req.IngredientID,
		QuantityInBaseUnit: req.QuantityInBaseUnit,
		LowThreshold:       req.LowThreshold,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
	if err := s.stockRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *stockService) FindOne(ctx context.Context, id uuid.UUID) (*models.StockItem, error) {
	item, err := s.stockRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, common.NotFoundf("stock item %s", id)
	}
	return item, nil
}

func (s *stockService) FindAll(ctx context.Context, restaurantID *uuid.UUID) ([]*models.StockItem, error) {
	return s.stockRepo.List(ctx, restaurantID)
}

// Adjust applies a signed quantity change and records an adjustment row. The
// resulting quantity can never go negative.
func (s *stockService) Adjust(ctx context.Context, id uuid.UUID, req *AdjustStockRequest) (*models.StockItem, error) {
	if !req.AdjustmentType.IsValid() {
		return nil, common.BusinessRulef("unknown adjustment type '%s'", req.AdjustmentType)
	}

	item, err := s.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}

	newQuantity := item.QuantityInBaseUnit + req.QuantityChange
	if newQuantity < 0 {
		return nil, common.BusinessRulef("insufficient stock for this adjustment")
	}

	item.QuantityInBaseUnit = newQuantity
	if req.AdjustmentType == models.StockAdjustmentRestock {
		now := time.Now()
		item.LastRestockedAt = &now
	}
	item.UpdatedAt = time.Now()

	adjustment := &models.StockAdjustment{
		ID:             uuid.New(),
		StockItemID:    item.ID,
		UserID:         req.UserID,
		AdjustmentType: req.AdjustmentType,
		QuantityChange: req.QuantityChange,
		NewQuantity:    newQuantity,
		Reason:         req.Reason,
		Reference:      req.Reference,
		CreatedAt:      time.Now(),
	}
	if err := s.stockRepo.CreateAdjustment(ctx, adjustment); err != nil {
		return nil, err
	}
	if err := s.stockRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

func (s *stockService) LowStock(ctx context.Context, restaurantID *uuid.UUID) ([]*models.StockItem, error) {
	return s.stockRepo.ListLowStock(ctx, restaurantID)
}

func (s *stockService) Adjustments(ctx context.Context, id uuid.UUID) ([]*models.StockAdjustment, error) {
	if _, err := s.FindOne(ctx, id); err != nil {
		return nil, err
	}
	return s.stockRepo.ListAdjustments(ctx, id)
}
