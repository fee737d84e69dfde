package repositories

import (
	"context"
	"errors"

	"dinemart/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type StockRepository interface {
	Create(ctx context.Context, item *models.StockItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.StockItem, error)
	GetByIngredientAndRestaurant(ctx context.Context, ingredientID, restaurantID uuid.UUID) (*models.StockItem, error)
	Update(ctx context.Context, item *models.StockItem) error
	List(ctx context.Context, restaurantID *uuid.UUID) ([]*models.StockItem, error)
	ListLowStock(ctx context.Context, restaurantID *uuid.UUID) ([]*models.StockItem, error)
	CreateAdjustment(ctx context.Context, adjustment *models.StockAdjustment) error
	ListAdjustments(ctx context.Context, stockItemID uuid.UUID) ([]*models.StockAdjustment, error)
	IngredientExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type stockRepo struct {
	db DB
}

func NewStockRepository(db DB) StockRepository {
	return &stockRepo{db: db}
}

const stockColumns = `id, restaurant_id, ingredient_id, quantity_in_base_unit, low_threshold, last_restocked_at, created_at, updated_at`

func (r *stockRepo) Create(ctx context.Context, item *models.StockItem) error {
	query := `
		INSERT INTO stock_items (id, restaurant_id, ingredient_id, quantity_in_base_unit, low_threshold, last_restocked_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.RestaurantID, item.IngredientID, item.QuantityInBaseUnit, item.LowThreshold, item.LastRestockedAt)
	return err
}

func (r *stockRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.StockItem, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_items WHERE id = $1`
	return r.scanItem(r.db.QueryRow(ctx, query, id))
}

func (r *stockRepo) GetByIngredientAndRestaurant(ctx context.Context, ingredientID, restaurantID uuid.UUID) (*models.StockItem, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_items WHERE ingredient_id = $1 AND restaurant_id = $2`
	return r.scanItem(r.db.QueryRow(ctx, query, ingredientID, restaurantID))
}

func (r *stockRepo) Update(ctx context.Context, item *models.StockItem) error {
	query := `
		UPDATE stock_items
		SET quantity_in_base_unit = $1, low_threshold = $2, last_restocked_at = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, item.QuantityInBaseUnit, item.LowThreshold, item.LastRestockedAt, item.ID)
	return err
}

func (r *stockRepo) List(ctx context.Context, restaurantID *uuid.UUID) ([]*models.StockItem, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_items`
	args := []interface{}{}
	if restaurantID != nil {
		query += ` WHERE restaurant_id = $1`
		args = append(args, *restaurantID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanItems(rows)
}

func (r *stockRepo) ListLowStock(ctx context.Context, restaurantID *uuid.UUID) ([]*models.StockItem, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_items WHERE quantity_in_base_unit <= low_threshold`
	args := []interface{}{}
	if restaurantID != nil {
		query += ` AND restaurant_id = $1`
		args = append(args, *restaurantID)
	}
	query += ` ORDER BY quantity_in_base_unit ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanItems(rows)
}

func (r *stockRepo) CreateAdjustment(ctx context.Context, adjustment *models.StockAdjustment) error {
	query := `
		INSERT INTO stock_adjustments (id, stock_item_id, user_id, adjustment_type, quantity_change, new_quantity, reason, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	_, err := r.db.Exec(ctx, query, adjustment.ID, adjustment.StockItemID, adjustment.UserID, adjustment.AdjustmentType, adjustment.QuantityChange, adjustment.NewQuantity, adjustment.Reason, adjustment.Reference)
	return err
}

func (r *stockRepo) ListAdjustments(ctx context.Context, stockItemID uuid.UUID) ([]*models.StockAdjustment, error) {
	query := `
		SELECT id, stock_item_id, user_id, adjustment_type, quantity_change, new_quantity, reason, reference, created_at
		FROM stock_adjustments
		WHERE stock_item_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, stockItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var adjustments []*models.StockAdjustment
	for rows.Next() {
		a := &models.StockAdjustment{}
		if err := rows.Scan(&a.ID, &a.StockItemID, &a.UserID, &a.AdjustmentType, &a.QuantityChange, &a.NewQuantity, &a.Reason, &a.Reference, &a.CreatedAt); err != nil {
			return nil, err
		}
		adjustments = append(adjustments, a)
	}
	return adjustments, rows.Err()
}

func (r *stockRepo) IngredientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM ingredients WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *stockRepo) scanItem(row pgx.Row) (*models.StockItem, error) {
	item := &models.StockItem{}
	err := row.Scan(&item.ID, &item.RestaurantID, &item.IngredientID, &item.QuantityInBaseUnit, &item.LowThreshold, &item.LastRestockedAt, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}

func (r *stockRepo) scanItems(rows pgx.Rows) ([]*models.StockItem, error) {
	var items []*models.StockItem
	for rows.Next() {
		item := &models.StockItem{}
		if err := rows.Scan(&item.ID, &item.RestaurantID, &item.IngredientID, &item.QuantityInBaseUnit, &item.LowThreshold, &item.LastRestockedAt, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
